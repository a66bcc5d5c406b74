package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abarbosa/atendo/internal/crm"
)

func newSendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send a message through the backend",
	}

	var phone, text, template string
	whatsapp := &cobra.Command{
		Use:   "whatsapp",
		Short: "Send a WhatsApp text or template message",
		RunE: func(cmd *cobra.Command, args []string) error {
			if text == "" && template == "" {
				return fmt.Errorf("one of --text or --template is required")
			}
			e, err := newEnv()
			if err != nil {
				return err
			}
			ctx, cancel := cmdContext()
			defer cancel()

			res, err := e.client.SendWhatsApp(ctx, crm.WhatsAppSend{
				Phone:    phone,
				Text:     text,
				Template: template,
			})
			if err != nil {
				return err
			}
			return printResult(res)
		},
	}
	whatsapp.Flags().StringVar(&phone, "phone", "", "recipient phone number")
	whatsapp.Flags().StringVar(&text, "text", "", "message text")
	whatsapp.Flags().StringVar(&template, "template", "", "template name")
	_ = whatsapp.MarkFlagRequired("phone")

	var contactID, subject, body string
	email := &cobra.Command{
		Use:   "email",
		Short: "Send an email to a contact",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			ctx, cancel := cmdContext()
			defer cancel()

			res, err := e.client.SendEmail(ctx, crm.EmailSend{
				ContactID: contactID,
				Subject:   subject,
				Body:      body,
			})
			if err != nil {
				return err
			}
			return printResult(res)
		},
	}
	email.Flags().StringVar(&contactID, "contact", "", "contact id")
	email.Flags().StringVar(&subject, "subject", "", "email subject")
	email.Flags().StringVar(&body, "body", "", "email body")
	_ = email.MarkFlagRequired("contact")
	_ = email.MarkFlagRequired("subject")

	cmd.AddCommand(whatsapp, email)
	return cmd
}

func printResult(res *crm.ActionResult) error {
	if jsonFlag {
		return json.NewEncoder(os.Stdout).Encode(res)
	}
	fmt.Printf("%s: %s", res.Status, res.ID)
	if res.Message != "" {
		fmt.Printf(" (%s)", res.Message)
	}
	fmt.Println()
	return nil
}
