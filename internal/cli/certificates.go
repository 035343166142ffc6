package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// NewCertificatesCmd groups certificate administration.
func NewCertificatesCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "certificates",
		Short: "Manage syllabus certificates",
	}
	cmd.AddCommand(newIssueCertificatesCmd(configPath))
	return cmd
}

func newIssueCertificatesCmd(configPath *string) *cobra.Command {
	var syllabusID, issuedBy string
	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Regenerate the certificate batch of a syllabus",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			rt, err := buildRuntime(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer rt.close()

			batch, err := rt.services.Certificates.Issue(cmd.Context(), syllabusID, issuedBy)
			if err != nil {
				return fmt.Errorf("issue certificates for %s: %w", syllabusID, err)
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(batch)
		},
	}
	cmd.Flags().StringVar(&syllabusID, "syllabus", "", "syllabus id")
	cmd.Flags().StringVar(&issuedBy, "by", "", "operator recorded on the certificates")
	_ = cmd.MarkFlagRequired("syllabus")
	return cmd
}
