package main

import (
	"fmt"
	"strings"

	"github.com/sanity-io/litter"
	"github.com/spf13/cobra"

	"samanainn/internal/chat"
	"samanainn/internal/intent"
	"samanainn/internal/modules/catalog"
	"samanainn/internal/modules/conversation"
	"samanainn/internal/responders"
	"samanainn/internal/service"
)

func newClassifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify <message>",
		Short: "Print the topic, confidence and responder plan for a message",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := intent.Classify(strings.Join(args, " "))
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "topic:      %s\n", in.Type)
			fmt.Fprintf(out, "confidence: %.2f\n", in.Confidence)
			for k, v := range in.Details {
				fmt.Fprintf(out, "detail:     %s=%s\n", k, v)
			}
			plan := service.Plan(in.Type)
			names := make([]string, len(plan))
			for i, p := range plan {
				names[i] = string(p)
			}
			fmt.Fprintf(out, "plan:       %s\n", strings.Join(names, " -> "))
			return nil
		},
	}
}

// newChatCmd runs every argument as one turn of the same in-memory conversation.
func newChatCmd() *cobra.Command {
	var (
		stage       string
		dump        bool
		bookingBase string
	)

	cmd := &cobra.Command{
		Use:   "chat <message> [message...]",
		Short: "Run turns against the sample catalog",
		Long: `chat runs each argument as a turn of one conversation against the bundled
sample catalog. No completion provider is configured, so free-form turns apologize.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			chatSvc := newOfflineChat(bookingBase)
			out := cmd.OutOrStdout()

			var conversationID string
			for i, message := range args {
				msg := service.MessageCommand{Message: message, ConversationID: conversationID, SessionID: "cli"}
				if i == 0 && stage != "" {
					s := chat.Stage(stage)
					msg.Stage = &s
				}
				res, err := chatSvc.HandleMessage(cmd.Context(), msg)
				if err != nil {
					return err
				}
				conversationID = res.ConversationID

				if dump {
					fmt.Fprintln(out, litter.Sdump(res))
					continue
				}
				printTurn(cmd, message, res)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&stage, "stage", "", "processing stage for the first turn (initial, query, booking, generic)")
	cmd.Flags().BoolVar(&dump, "dump", false, "dump the full turn result")
	cmd.Flags().StringVar(&bookingBase, "booking-base", responders.DefaultBookingBaseURL, "booking site base URL")
	return cmd
}

func newOfflineChat(bookingBase string) *service.ChatService {
	gw := catalog.Sample()
	booking := responders.NewBooking(bookingBase, logger)
	dispatcher := service.NewTurnDispatcher(
		service.NewCoordinator(logger),
		responders.NewQuery(gw, nil, nil, logger),
		booking,
		responders.NewGeneric(nil, nil, 0, logger),
		[]responders.Responder{
			responders.NewLodging(gw, logger),
			responders.NewFood(gw, logger),
			responders.NewActivities(gw, nil, logger),
			responders.NewTransport(gw, logger),
		},
		logger,
	)
	convs := conversation.NewService(conversation.NewMemoryStore(), nil, nil, logger)
	return service.NewChatService(convs, dispatcher, nil, logger)
}

func printTurn(cmd *cobra.Command, message string, res *service.MessageResult) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "> %s\n", message)
	fmt.Fprintf(out, "%s\n", res.Response.Message)
	for _, r := range res.Response.Results {
		fmt.Fprintf(out, "  - %s", r.Title)
		if r.ShortDesc != "" {
			fmt.Fprintf(out, ": %s", r.ShortDesc)
		}
		fmt.Fprintln(out)
	}
	if ui := res.Response.UI; ui != nil {
		for _, q := range ui.SuggestedQuestions {
			fmt.Fprintf(out, "  ? %s\n", q)
		}
		if ui.ShowBookingButton {
			fmt.Fprintf(out, "  [%s] %s\n", ui.BookingButtonText, ui.BookingButtonURL)
		}
		if ui.ShowPricingButton {
			fmt.Fprintf(out, "  [%s] %s\n", ui.PricingButtonText, ui.PricingButtonURL)
		}
		if ui.ShowDetailButton {
			fmt.Fprintf(out, "  [%s] %s\n", ui.DetailButtonText, ui.DetailButtonURL)
		}
	}
	fmt.Fprintf(out, "(stage=%s intent=%s conversation=%s)\n\n", res.Context.Stage(), res.Context.IntentType(), res.ConversationID)
}

func newBookingURLCmd() *cobra.Command {
	var (
		p    chat.BookingParams
		base string
	)

	cmd := &cobra.Command{
		Use:   "booking-url",
		Short: "Build a booking deep link",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(p.Type) == "" {
				return fmt.Errorf("--type is required")
			}
			u, err := responders.BuildURL(base, p)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v, using the base URL\n", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), u)
			return nil
		},
	}
	cmd.Flags().StringVar(&p.Type, "type", "", "accommodation, restaurant, tour or car")
	cmd.Flags().StringVar(&p.Slug, "slug", "", "item slug")
	cmd.Flags().StringVar(&p.CheckIn, "check-in", "", "check-in date")
	cmd.Flags().StringVar(&p.CheckOut, "check-out", "", "check-out date")
	cmd.Flags().IntVar(&p.Adults, "adults", 0, "adults")
	cmd.Flags().IntVar(&p.Children, "children", 0, "children")
	cmd.Flags().StringVar(&base, "base", responders.DefaultBookingBaseURL, "booking site base URL")
	return cmd
}
