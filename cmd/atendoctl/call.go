package main

import (
	"github.com/spf13/cobra"

	"github.com/abarbosa/atendo/internal/crm"
)

func newCallCmd() *cobra.Command {
	var contactID, phone, callType string
	cmd := &cobra.Command{
		Use:   "call",
		Short: "Start an outbound call to a contact",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			ctx, cancel := cmdContext()
			defer cancel()

			if phone == "" && contactID != "" {
				c, err := e.client.GetContact(ctx, contactID)
				if err != nil {
					return err
				}
				phone = c.Phone
			}
			res, err := e.client.InitiateCall(ctx, crm.CallRequest{
				ContactID: contactID,
				Phone:     phone,
				CallType:  callType,
			})
			if err != nil {
				return err
			}
			return printResult(res)
		},
	}
	cmd.Flags().StringVar(&contactID, "contact", "", "contact id")
	cmd.Flags().StringVar(&phone, "phone", "", "phone number (defaults to the contact's)")
	cmd.Flags().StringVar(&callType, "type", "", "call type override")
	_ = cmd.MarkFlagRequired("contact")
	return cmd
}
