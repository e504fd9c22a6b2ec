package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spec-kit/helpdesk/internal/api/dto"
	"github.com/spec-kit/helpdesk/internal/dispatch"
	"github.com/spec-kit/helpdesk/internal/service"
)

func newCommentCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "comment",
		Short: "Add, list and delete ticket comments",
	}
	cmd.AddCommand(newCommentAddCommand(opts), newCommentListCommand(opts), newCommentDeleteCommand(opts))
	return cmd
}

func newCommentAddCommand(opts *options) *cobra.Command {
	var req dto.CreateCommentRequest
	cmd := &cobra.Command{
		Use:   "add TICKET_ID",
		Short: "Comment on a ticket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ticketID, err := parseIDArg(args[0])
			if err != nil {
				return err
			}
			if err := req.Validate(); err != nil {
				return err
			}
			return opts.withHandlers(cmd, func(ctx context.Context, ops dispatch.Handlers) error {
				id, err := ops.CreateComment(ctx, service.CreateCommentCommand{TicketID: ticketID, Text: req.Text, Author: req.Author})
				if err != nil {
					return err
				}
				return opts.print(cmd.OutOrStdout(), idResult{ID: id})
			})
		},
	}
	cmd.Flags().StringVar(&req.Text, "text", "", "Comment text (1-1000 characters)")
	cmd.Flags().StringVar(&req.Author, "author", "", "Comment author (1-100 characters)")
	return cmd
}

func newCommentListCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list TICKET_ID",
		Short: "List a ticket's comments, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ticketID, err := parseIDArg(args[0])
			if err != nil {
				return err
			}
			return opts.withHandlers(cmd, func(ctx context.Context, ops dispatch.Handlers) error {
				items, err := ops.ListCommentsByTicket(ctx, service.ListCommentsByTicketQuery{TicketID: ticketID})
				if err != nil {
					return err
				}
				return opts.print(cmd.OutOrStdout(), items)
			})
		},
	}
}

func newCommentDeleteCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete one comment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg(args[0])
			if err != nil {
				return err
			}
			return opts.withHandlers(cmd, func(ctx context.Context, ops dispatch.Handlers) error {
				ok, err := ops.DeleteComment(ctx, service.DeleteCommentCommand{ID: id})
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("comment %d not found", id)
				}
				return opts.print(cmd.OutOrStdout(), idResult{ID: id})
			})
		},
	}
}
