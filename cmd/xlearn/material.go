package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ShinnosukeUesaka/XLearn/internal/cli"
	"github.com/ShinnosukeUesaka/XLearn/internal/database"
	"github.com/ShinnosukeUesaka/XLearn/internal/material"
)

func newMaterialCommand() *cobra.Command {
	materialCommand := &cobra.Command{
		Use:   "material",
		Short: "Manage study materials",
	}

	materialCommand.AddCommand(
		newMaterialQuestionCommand(),
		newMaterialQuoteCommand(),
		newMaterialListCommand(),
		newMaterialImportCommand(),
	)

	return materialCommand
}

func newMaterialCLI() (*cli.MaterialCLI, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("loadConfig() > %w", err)
	}
	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("database.Open() > %w", err)
	}
	closeDB := func() {
		_ = db.Close()
	}
	floorInterval := time.Duration(cfg.Scheduler.FloorIntervalHours) * time.Hour
	return cli.NewMaterialCLI(material.NewDBRepository(db), floorInterval), closeDB, nil
}

func newMaterialQuestionCommand() *cobra.Command {
	var params cli.QuestionParams
	command := &cobra.Command{
		Use:   "question <owner>",
		Short: "Submit a question material that is reviewed on a doubling schedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			materialCLI, closeDB, err := newMaterialCLI()
			if err != nil {
				return err
			}
			defer closeDB()
			return materialCLI.SubmitQuestion(cmd.Context(), args[0], params)
		},
	}
	command.Flags().StringVar(&params.Question, "question", "", "question text to post")
	command.Flags().StringVar(&params.Answer, "answer", "", "expected answer used for grading")
	command.Flags().StringVar(&params.Source, "source", "", "where the material came from")
	command.Flags().BoolVar(&params.RevealAnswer, "reveal-answer", false, "post the expected answer after the reply window")
	_ = command.MarkFlagRequired("question")
	_ = command.MarkFlagRequired("answer")
	return command
}

func newMaterialQuoteCommand() *cobra.Command {
	var params cli.QuoteParams
	command := &cobra.Command{
		Use:   "quote <owner>",
		Short: "Submit a quote material that is posted on a doubling schedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			materialCLI, closeDB, err := newMaterialCLI()
			if err != nil {
				return err
			}
			defer closeDB()
			return materialCLI.SubmitQuote(cmd.Context(), args[0], params)
		},
	}
	command.Flags().StringVar(&params.Content, "content", "", "quote text to post")
	command.Flags().StringVar(&params.Source, "source", "", "who or what the quote is from")
	_ = command.MarkFlagRequired("content")
	return command
}

func (s *statusValue) Set(val string) error {
	for _, status := range allStatuses {
		if val == string(status) {
			*s = statusValue(status)
			return nil
		}
	}
	return fmt.Errorf("invalid status: %s", val)
}

func (s statusValue) String() string {
	return string(s)
}

func (s *statusValue) Type() string {
	return "status"
}

type statusValue material.Status

var (
	_           pflag.Value = (*statusValue)(nil)
	allStatuses             = []material.Status{
		material.StatusScheduled,
		material.StatusPublished,
		material.StatusAwaitingReply,
		material.StatusCompleted,
	}
)

func newMaterialListCommand() *cobra.Command {
	var status statusValue
	command := &cobra.Command{
		Use:   "list <owner>",
		Short: "List an owner's materials with their review state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			materialCLI, closeDB, err := newMaterialCLI()
			if err != nil {
				return err
			}
			defer closeDB()
			return materialCLI.List(cmd.Context(), args[0], material.Status(status))
		},
	}
	command.Flags().Var(&status, "status", "only list materials in this status")
	return command
}

func newMaterialImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <owner> <file>",
		Short: "Bulk import materials for an owner from a YAML file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			materialCLI, closeDB, err := newMaterialCLI()
			if err != nil {
				return err
			}
			defer closeDB()
			return materialCLI.Import(cmd.Context(), args[0], args[1])
		},
	}
}
