package main

import (
	"github.com/spf13/cobra"
)

func newVerifyCmd(a *app) *cobra.Command {
	var (
		keyring          string
		requireSignature bool
	)

	cmd := &cobra.Command{
		Use:   "verify <path>",
		Short: "Check the checksum and signature of a package file",
		Long: `Verify a package file against its <file>.sha256 sidecar and its
<file>.asc or <file>.sig detached OpenPGP signature.

Signatures are checked against security.keyring (or --keyring).`,
		Example: `  appshortcuts verify dist/mail.apk
  appshortcuts verify dist/mail.apk --keyring trusted.asc --require-signature`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if keyring != "" {
				a.cfg.Security.Keyring = keyring
			}
			if requireSignature {
				a.cfg.Security.RequireSignature = true
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}

			verifier, err := a.newVerifier()
			if err != nil {
				return err
			}
			report, verifyErr := verifier.Verify(cmd.Context(), args[0])
			if report == nil {
				return verifyErr
			}

			view := newIntegrityView(report, verifyErr)
			if a.cfg.Output.Format == "json" {
				if err := writeJSON(a.stdout, view); err != nil {
					return err
				}
			} else {
				renderIntegrity(a.stdout, view)
			}
			return verifyErr
		},
	}

	cmd.Flags().StringVar(&keyring, "keyring", "", "OpenPGP public keyring (overrides security.keyring)")
	cmd.Flags().BoolVar(&requireSignature, "require-signature", false, "fail when the file has no detached signature")
	return cmd
}
