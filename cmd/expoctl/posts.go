package main

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"expoadmin/api"
	appresource "expoadmin/application/resource"
	"expoadmin/domain/content"
	"expoadmin/domain/resource"
	"expoadmin/pkg/client"
	"expoadmin/pkg/datepicker"
	"expoadmin/pkg/richtext"

	"github.com/spf13/cobra"
)

const excerptLength = 200

type importOptions struct {
	title     string
	slug      string
	author    string
	cover     string
	tags      []string
	publish   bool
	published string
}

// newPostImportCmd 挂在 posts 资源命令下
func newPostImportCmd(g *globals) *cobra.Command {
	var opts importOptions
	importCmd := &cobra.Command{
		Use:   "import <file.md>",
		Short: "Create a blog post from a Markdown file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			fields, err := opts.postFields(string(source), richtext.NewSanitizer())
			if err != nil {
				return err
			}

			c, err := g.client()
			if err != nil {
				return err
			}
			store := appresource.NewCollection[content.BlogPost](
				client.NewResource[content.BlogPost](c, api.PathBlogPosts),
				appresource.WithMedia(c.Media()),
			)
			defer store.Close()

			if opts.cover != "" {
				file, closeFile, err := openFile(opts.cover)
				if err != nil {
					return err
				}
				url, err := store.UploadImage(cmd.Context(), file, "blog")
				closeFile()
				if err != nil {
					return fmt.Errorf("upload cover: %w", err)
				}
				fields["cover_image"] = url
			}

			post, err := store.Create(cmd.Context(), fields)
			if err != nil {
				return err
			}
			printWarnings(cmd.ErrOrStderr(), store.State().Warnings)
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %q as %s (id %s)\n", post.Title, post.Slug, post.ID)
			return nil
		},
	}
	f := importCmd.Flags()
	f.StringVar(&opts.title, "title", "", "Post title (defaults to the first # heading)")
	f.StringVar(&opts.slug, "slug", "", "URL slug (derived from the title when empty)")
	f.StringVar(&opts.author, "author", "", "Author name")
	f.StringVar(&opts.cover, "cover", "", "Cover image file to upload")
	f.StringSliceVar(&opts.tags, "tag", nil, "Tag (repeatable)")
	f.BoolVar(&opts.publish, "publish", false, "Publish immediately")
	f.StringVar(&opts.published, "published-at", "", "Publication date yyyy-MM-dd (defaults to today with --publish)")
	return importCmd
}

// postFields Markdown 转 HTML；第一行 "# 标题" 在未指定 --title 时作为标题并从正文移除
func (o importOptions) postFields(markdown string, s *richtext.Sanitizer) (resource.Fields, error) {
	title, body := o.title, markdown
	if heading, rest, ok := splitHeading(markdown); ok && title == "" {
		title, body = heading, rest
	}
	if title == "" {
		return nil, fmt.Errorf("no title: pass --title or start the file with a # heading")
	}

	html, err := s.FromMarkdown(body)
	if err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}

	slug := o.slug
	if slug == "" {
		slug = slugify(title)
	}
	fields := resource.Fields{
		"title":     title,
		"slug":      slug,
		"content":   html,
		"excerpt":   s.Excerpt(html, excerptLength),
		"published": o.publish,
	}
	if o.author != "" {
		fields["author"] = o.author
	}
	if len(o.tags) > 0 {
		fields["tags"] = o.tags
	}
	switch {
	case o.published != "":
		if _, err := datepicker.ParseISODate(o.published); err != nil {
			return nil, err
		}
		fields["published_at"] = o.published
	case o.publish:
		fields["published_at"] = datepicker.FormatISODate(time.Now())
	}
	return fields, nil
}

func splitHeading(markdown string) (string, string, bool) {
	trimmed := strings.TrimLeft(markdown, "\r\n\t ")
	line, rest, _ := strings.Cut(trimmed, "\n")
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "# ") {
		return "", markdown, false
	}
	return strings.TrimSpace(strings.TrimPrefix(line, "# ")), rest, true
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(title string) string {
	return strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(title), "-"), "-")
}
