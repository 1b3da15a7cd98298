// Command editorctl drives a running editor service from the terminal.
package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	baseURL string
	token   string
	timeout time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "editorctl",
	Short: "Inspect and drive the editor session of a running service.",
	Long: `editorctl talks to the /api/editor/v1 endpoints.

  editorctl token --secret $JWT_SECRET
  editorctl open 3f1c... --token $TOKEN
  editorctl state`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		color.Red("%v", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&baseURL, "url", envOr("EDITOR_API_URL", "http://localhost:3000/api/editor/v1"), "editor API base URL")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv("EDITOR_TOKEN"), "bearer token")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 90*time.Second, "request timeout; opens may wait for a vault password")

	rootCmd.AddCommand(
		simpleCmd("state", "Show the current session.", http.MethodGet, "/state"),
		simpleCmd("new", "Open a new, unsaved note.", http.MethodPost, "/open-new"),
		simpleCmd("close", "Flush and close the open note.", http.MethodPost, "/close"),
		simpleCmd("retry", "Reopen the last note after a surface reset.", http.MethodPost, "/retry"),
		openCmd, titleCmd, themeCmd, unlockCmd, notesCmd, deleteCmd, vaultCmd, lockCmd, sealCmd, tokenCmd,
	)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func client() *apiClient {
	return newAPIClient(strings.TrimRight(baseURL, "/"), token, timeout)
}

func simpleCmd(use, short, method, path string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(method, path, nil)
		},
	}
}

func run(method, path string, body interface{}) error {
	res, err := client().do(method, path, body)
	if err != nil {
		if res != nil && len(res.Details) > 0 && string(res.Details) != "null" {
			color.Yellow("details: %s", res.Details)
		}
		return err
	}
	color.Green("%s", res.Message)
	printData(res.Data)
	return nil
}

func printData(raw json.RawMessage) {
	if len(raw) == 0 || string(raw) == "null" {
		return
	}
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		fmt.Println(string(raw))
		return
	}
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}

func noteArg(args []string) (string, error) {
	id, err := uuid.Parse(args[0])
	if err != nil {
		return "", fmt.Errorf("invalid note id %q", args[0])
	}
	return id.String(), nil
}

var openCmd = &cobra.Command{
	Use:     "open [note-id]",
	Aliases: []string{"o"},
	Short:   "Open a note, closing the current one first.",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := noteArg(args)
		if err != nil {
			return err
		}
		return run(http.MethodPost, "/open/"+id, nil)
	},
}

var titleCmd = &cobra.Command{
	Use:   "title [title]",
	Short: "Set the title of the open note.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(http.MethodPost, "/title", map[string]string{"title": args[0]})
	},
}

var themeDark bool

var themeCmd = &cobra.Command{
	Use:   "theme [name]",
	Short: "Push a theme to the editing surface.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(http.MethodPost, "/theme", map[string]interface{}{"name": args[0], "dark": themeDark})
	},
}

var unlockCmd = &cobra.Command{
	Use:   "unlock [vault-id] [password]",
	Short: "Answer a vault password prompt.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(http.MethodPost, "/unlock", map[string]string{"vault_id": args[0], "password": args[1]})
	},
}

var notesQuery, notesVault string

var notesCmd = &cobra.Command{
	Use:     "notes",
	Aliases: []string{"ls"},
	Short:   "List notes, most recently edited first.",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		q := url.Values{}
		if notesQuery != "" {
			q.Set("q", notesQuery)
		}
		if notesVault != "" {
			q.Set("vault_id", notesVault)
		}
		path := "/notes"
		if len(q) > 0 {
			path += "?" + q.Encode()
		}
		return run(http.MethodGet, path, nil)
	},
}

var deleteCmd = &cobra.Command{
	Use:     "delete [note-id]",
	Aliases: []string{"rm"},
	Short:   "Delete a note everywhere.",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := noteArg(args)
		if err != nil {
			return err
		}
		return run(http.MethodDelete, "/notes/"+id, nil)
	},
}

var vaultCmd = &cobra.Command{
	Use:   "vault [name] [password]",
	Short: "Create a password protected vault.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(http.MethodPost, "/vaults", map[string]string{"name": args[0], "password": args[1]})
	},
}

var lockCmd = &cobra.Command{
	Use:   "lock [note-id] [vault-id]",
	Short: "Move a note into a vault.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := noteArg(args)
		if err != nil {
			return err
		}
		return run(http.MethodPost, "/notes/"+id+"/lock", map[string]string{"vault_id": args[1]})
	},
}

var sealCmd = &cobra.Command{
	Use:   "seal [vault-id]",
	Short: "Lock a vault again before its unlock expires.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid vault id %q: %w", args[0], err)
		}
		return run(http.MethodPost, "/vaults/"+id.String()+"/lock", nil)
	},
}

var (
	tokenSecret string
	tokenTTL    time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a development token signed with the service secret.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		signed, err := mintToken(tokenSecret, uuid.New(), tokenTTL)
		if err != nil {
			return err
		}
		fmt.Println(signed)
		return nil
	},
}

func mintToken(secret string, userID uuid.UUID, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("a signing secret is required (--secret or JWT_SECRET)")
	}
	claims := jwt.MapClaims{
		"user_id": userID.String(),
		"exp":     time.Now().Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func init() {
	themeCmd.Flags().BoolVar(&themeDark, "dark", false, "dark variant")
	notesCmd.Flags().StringVarP(&notesQuery, "query", "q", "", "filter by title")
	notesCmd.Flags().StringVar(&notesVault, "vault", "", "only notes in this vault")
	tokenCmd.Flags().StringVar(&tokenSecret, "secret", os.Getenv("JWT_SECRET"), "signing secret")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "token lifetime")
}
