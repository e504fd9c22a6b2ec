package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spec-kit/helpdesk/internal/api/dto"
	"github.com/spec-kit/helpdesk/internal/dispatch"
	"github.com/spec-kit/helpdesk/internal/service"
)

func newTicketCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ticket",
		Short: "Create, list, inspect and change tickets",
	}
	cmd.AddCommand(
		newTicketCreateCommand(opts),
		newTicketListCommand(opts),
		newTicketShowCommand(opts),
		newTicketUpdateCommand(opts),
		newTicketStatusCommand(opts),
		newTicketDeleteCommand(opts),
	)
	return cmd
}

func newTicketCreateCommand(opts *options) *cobra.Command {
	var req dto.CreateTicketRequest
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a ticket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			priority, err := req.Validate()
			if err != nil {
				return err
			}
			return opts.withHandlers(cmd, func(ctx context.Context, ops dispatch.Handlers) error {
				id, err := ops.CreateTicket(ctx, service.CreateTicketCommand{
					Title:       req.Title,
					Description: req.Description,
					Priority:    priority,
				})
				if err != nil {
					return err
				}
				return opts.print(cmd.OutOrStdout(), idResult{ID: id})
			})
		},
	}
	cmd.Flags().StringVar(&req.Title, "title", "", "Ticket title (3-100 characters)")
	cmd.Flags().StringVar(&req.Description, "description", "", "Ticket description (10-500 characters)")
	cmd.Flags().StringVar(&req.Priority, "priority", "", "Low, Medium or High (default Medium)")
	return cmd
}

func newTicketListCommand(opts *options) *cobra.Command {
	var query dto.TicketListQuery
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tickets, optionally filtered",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withHandlers(cmd, func(ctx context.Context, ops dispatch.Handlers) error {
				items, err := ops.ListTickets(ctx, service.ListTicketsQuery{Status: query.Status, Priority: query.Priority})
				if err != nil {
					return err
				}
				return opts.print(cmd.OutOrStdout(), items)
			})
		},
	}
	cmd.Flags().StringVar(&query.Status, "status", "", "Only tickets with this status")
	cmd.Flags().StringVar(&query.Priority, "priority", "", "Only tickets with this priority")
	return cmd
}

func newTicketShowCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show a ticket with its comments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg(args[0])
			if err != nil {
				return err
			}
			return opts.withHandlers(cmd, func(ctx context.Context, ops dispatch.Handlers) error {
				detail, err := ops.GetTicketByID(ctx, service.GetTicketByIDQuery{ID: id})
				if err != nil {
					return err
				}
				if detail == nil {
					return fmt.Errorf("ticket %d not found", id)
				}
				return opts.print(cmd.OutOrStdout(), detail)
			})
		},
	}
}

func newTicketUpdateCommand(opts *options) *cobra.Command {
	var req dto.UpdateTicketRequest
	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Replace a ticket's title, description, status and priority",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg(args[0])
			if err != nil {
				return err
			}
			status, priority, err := req.Validate()
			if err != nil {
				return err
			}
			return opts.withHandlers(cmd, func(ctx context.Context, ops dispatch.Handlers) error {
				ok, err := ops.UpdateTicket(ctx, service.UpdateTicketCommand{
					ID:          id,
					Title:       req.Title,
					Description: req.Description,
					Status:      status,
					Priority:    priority,
				})
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("ticket %d not found", id)
				}
				return opts.print(cmd.OutOrStdout(), idResult{ID: id})
			})
		},
	}
	cmd.Flags().StringVar(&req.Title, "title", "", "New title")
	cmd.Flags().StringVar(&req.Description, "description", "", "New description")
	cmd.Flags().StringVar(&req.Status, "status", "", "New status")
	cmd.Flags().StringVar(&req.Priority, "priority", "", "New priority")
	for _, name := range []string{"title", "description", "status", "priority"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func newTicketStatusCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "status ID STATUS",
		Short: "Change only a ticket's status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg(args[0])
			if err != nil {
				return err
			}
			status, err := dto.UpdateStatusRequest{Status: args[1]}.Validate()
			if err != nil {
				return err
			}
			return opts.withHandlers(cmd, func(ctx context.Context, ops dispatch.Handlers) error {
				ok, err := ops.UpdateTicketStatus(ctx, service.UpdateTicketStatusCommand{ID: id, Status: status})
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("ticket %d not found", id)
				}
				return opts.print(cmd.OutOrStdout(), idResult{ID: id})
			})
		},
	}
}

func newTicketDeleteCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a ticket and all of its comments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg(args[0])
			if err != nil {
				return err
			}
			return opts.withHandlers(cmd, func(ctx context.Context, ops dispatch.Handlers) error {
				ok, err := ops.DeleteTicket(ctx, service.DeleteTicketCommand{ID: id})
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("ticket %d not found", id)
				}
				return opts.print(cmd.OutOrStdout(), idResult{ID: id})
			})
		},
	}
}
