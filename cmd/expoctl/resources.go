package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"expoadmin/api"
	appresource "expoadmin/application/resource"
	"expoadmin/domain/content"
	"expoadmin/domain/resource"
	"expoadmin/domain/shared"
	"expoadmin/pkg/client"

	"github.com/spf13/cobra"
)

func resourceCommands(g *globals) []*cobra.Command {
	posts := newResourceCmd[content.BlogPost](g, "posts", api.PathBlogPosts, "Blog posts")
	posts.AddCommand(newPostImportCmd(g))

	return []*cobra.Command{
		newResourceCmd[content.HomePage](g, "home", api.PathHomePage, "Home page content"),
		newResourceCmd[content.MainCountriesPage](g, "main-countries", api.PathMainCountries, "Main countries landing page"),
		posts,
		newResourceCmd[content.TradeShow](g, "trade-shows", api.PathTradeShows, "Trade show calendar"),
		newResourceCmd[content.City](g, "cities", api.PathCities, "Cities"),
		newResourceCmd[content.Country](g, "countries", api.PathCountries, "Countries"),
		newResourceCmd[content.Testimonial](g, "testimonials", api.PathTestimonials, "Client testimonials"),
		newResourceCmd[content.ServiceItem](g, "services", api.PathServices, "Service offerings"),
		newResourceCmd[content.PortfolioItem](g, "portfolio", api.PathPortfolio, "Portfolio items"),
		newResourceCmd[content.FormSubmission](g, "submissions", api.PathSubmissions, "Website form submissions"),
	}
}

// fieldFlags create/update 的字段输入：--data JSON、--file 路径（- 为 stdin）与 key=value 参数
type fieldFlags struct {
	data string
	file string
}

func (f *fieldFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.data, "data", "", "Fields as a JSON object")
	cmd.Flags().StringVarP(&f.file, "file", "f", "", "Read fields from a JSON file (- for stdin)")
}

func (f *fieldFlags) fields(stdin io.Reader, pairs []string) (resource.Fields, error) {
	fields := resource.Fields{}
	var raw []byte
	switch {
	case f.data != "" && f.file != "":
		return nil, fmt.Errorf("use either --data or --file")
	case f.data != "":
		raw = []byte(f.data)
	case f.file == "-":
		b, err := io.ReadAll(stdin)
		if err != nil {
			return nil, err
		}
		raw = b
	case f.file != "":
		b, err := os.ReadFile(f.file)
		if err != nil {
			return nil, err
		}
		raw = b
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, fmt.Errorf("fields must be a JSON object: %w", err)
		}
	}
	for k, v := range parsePairs(pairs) {
		fields[k] = v
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("no fields given")
	}
	return fields, nil
}

// parsePairs key=value；value 是合法 JSON 时按 JSON 解析（数字、布尔、数组），否则作为字符串
func parsePairs(pairs []string) resource.Fields {
	fields := resource.Fields{}
	for _, p := range pairs {
		key, value, ok := strings.Cut(p, "=")
		if !ok || key == "" {
			continue
		}
		var v any
		if err := json.Unmarshal([]byte(value), &v); err == nil {
			fields[key] = v
		} else {
			fields[key] = value
		}
	}
	return fields
}

func newResourceCmd[T any, P shared.Record[T]](g *globals, use, path, short string) *cobra.Command {
	cmd := &cobra.Command{Use: use, Short: short}

	remote := func() (*client.Resource[T, P], error) {
		c, err := g.client()
		if err != nil {
			return nil, err
		}
		return client.NewResource[T, P](c, path), nil
	}

	var page, pageSize int
	list := &cobra.Command{
		Use:   "list",
		Short: "List records (paginated when --page and --page-size are set)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := remote()
			if err != nil {
				return err
			}
			store := appresource.NewCollection[T, P](r)
			defer store.Close()
			result, err := store.FetchList(cmd.Context(), page, pageSize)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}
	list.Flags().IntVar(&page, "page", 0, "1-based page number")
	list.Flags().IntVar(&pageSize, "page-size", 0, "Page size")

	get := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := remote()
			if err != nil {
				return err
			}
			store := appresource.NewItem[T, P](r)
			defer store.Close()
			if err := store.SetID(cmd.Context(), args[0]); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), store.State().Data)
		},
	}

	var createFields fieldFlags
	create := &cobra.Command{
		Use:   "create [key=value...]",
		Short: "Create a record",
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, err := createFields.fields(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			r, err := remote()
			if err != nil {
				return err
			}
			store := appresource.NewCollection[T, P](r)
			defer store.Close()
			item, err := store.Create(cmd.Context(), fields)
			if err != nil {
				return err
			}
			printWarnings(cmd.ErrOrStderr(), store.State().Warnings)
			return printJSON(cmd.OutOrStdout(), item)
		},
	}
	createFields.register(create)

	var updateFields fieldFlags
	update := &cobra.Command{
		Use:   "update <id> [key=value...]",
		Short: "Update fields of a record",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, err := updateFields.fields(cmd.InOrStdin(), args[1:])
			if err != nil {
				return err
			}
			r, err := remote()
			if err != nil {
				return err
			}
			store := appresource.NewItem[T, P](r)
			defer store.Close()
			item, err := store.Update(cmd.Context(), args[0], fields)
			if err != nil {
				return err
			}
			printWarnings(cmd.ErrOrStderr(), store.State().Warnings)
			return printJSON(cmd.OutOrStdout(), item)
		},
	}
	updateFields.register(update)

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := remote()
			if err != nil {
				return err
			}
			store := appresource.NewCollection[T, P](r)
			defer store.Close()
			if _, err := store.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			printWarnings(cmd.ErrOrStderr(), store.State().Warnings)
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s %s\n", use, args[0])
			return nil
		},
	}

	cmd.AddCommand(list, get, create, update, del)
	return cmd
}
