package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"expoadmin/domain/resource"
	"expoadmin/pkg/client"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// globals 持久化 flag，同时可通过 EXPOCTL_* 环境变量设置
type globals struct {
	v *viper.Viper
}

func (g *globals) server() string    { return g.v.GetString("server") }
func (g *globals) tokenFile() string { return g.v.GetString("token-file") }
func (g *globals) timeout() time.Duration {
	return g.v.GetDuration("timeout")
}

// token 优先使用 --token，其次读取 token 文件
func (g *globals) token() string {
	if t := g.v.GetString("token"); t != "" {
		return t
	}
	data, err := os.ReadFile(g.tokenFile())
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func (g *globals) client() (*client.Client, error) {
	return client.New(g.server(), client.WithToken(g.token()), client.WithTimeout(g.timeout()))
}

func (g *globals) saveToken(token string) error {
	path := g.tokenFile()
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(token+"\n"), 0o600)
}

func defaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".expoctl-token"
	}
	return filepath.Join(dir, "expoctl", "token")
}

func newRootCmd() *cobra.Command {
	g := &globals{v: viper.New()}

	root := &cobra.Command{
		Use:   "expoctl",
		Short: "Manage expoadmin site content from the command line",
		Long: `expoctl talks to the expoadmin HTTP API. It manages pages, blog posts,
trade shows, places, testimonials, services, portfolio items and form
submissions, uploads media, and imports Markdown posts.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.String("server", "http://localhost:8080", "API base URL")
	flags.String("token", "", "Bearer token (defaults to the saved login token)")
	flags.String("token-file", defaultTokenFile(), "Where login stores the token")
	flags.Duration("timeout", 30*time.Second, "Request timeout")
	_ = g.v.BindPFlags(flags)
	g.v.SetEnvPrefix("EXPOCTL")
	g.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	g.v.AutomaticEnv()

	root.AddCommand(newLoginCmd(g))
	for _, rc := range resourceCommands(g) {
		root.AddCommand(rc)
	}
	root.AddCommand(newMediaCmd(g))
	root.AddCommand(newCalendarCmd())

	return root
}

func newLoginCmd(g *globals) *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and save the access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv("EXPOCTL_PASSWORD")
			}
			if password == "" {
				return errors.New("password is required (--password or EXPOCTL_PASSWORD)")
			}
			c, err := g.client()
			if err != nil {
				return err
			}
			token, expires, err := c.Login(cmd.Context(), username, password)
			if err != nil {
				return err
			}
			if err := g.saveToken(token); err != nil {
				return fmt.Errorf("save token: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (token expires %s)\n", username, expires.Local().Format(time.RFC1123))
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "admin", "Admin username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Admin password")
	return cmd
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printWarnings(w io.Writer, warnings []resource.Warning) {
	for _, warn := range warnings {
		fmt.Fprintf(w, "warning: %s: %s\n", warn.Code, warn.Message)
	}
}
