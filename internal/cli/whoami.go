package cli

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"
)

func newWhoamiCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the active session",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := loadSession(cmd.Context(), sessionPath(), opts.logger())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printField(out, "DID", session.DID().String())
			printField(out, "PDS", session.PDS().String())
			if expiry, ok := tokenExpiry(session.ExportAccessToken()); ok {
				printField(out, "Access token expires", expiry.Format(time.RFC3339))
			}
			return nil
		},
	}
}

// tokenExpiry reads the exp claim without verifying the signature. The
// CLI only reports it; the server stays the authority. Opaque non-JWT
// tokens simply have no expiry to show.
func tokenExpiry(token string) (time.Time, bool) {
	if token == "" {
		return time.Time{}, false
	}
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
