package main

import (
	"fmt"
	"os"
	"path/filepath"

	"expoadmin/infrastructure/storage"

	"github.com/spf13/cobra"
)

func newMediaCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{Use: "media", Short: "Upload and delete images and documents"}

	var folder string
	upload := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a file and print its public URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := g.client()
			if err != nil {
				return err
			}
			file, closeFile, err := openFile(args[0])
			if err != nil {
				return err
			}
			defer closeFile()
			obj, err := c.Media().Upload(cmd.Context(), file, folder)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), obj.URL)
			return nil
		},
	}
	upload.Flags().StringVar(&folder, "folder", "", "Target folder (server default when empty)")

	del := &cobra.Command{
		Use:   "delete <url>",
		Short: "Delete an uploaded file by its public URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := g.client()
			if err != nil {
				return err
			}
			ok, err := c.Media().DeleteByURL(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing to delete")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Deleted", args[0])
			return nil
		},
	}

	cmd.AddCommand(upload, del)
	return cmd
}

// openFile 调用方负责 close
func openFile(path string) (storage.File, func(), error) {
	f, err := os.Open(path)
	if err != nil {
		return storage.File{}, nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return storage.File{}, nil, err
	}
	return storage.File{
		Name:   filepath.Base(path),
		Size:   info.Size(),
		Reader: f,
	}, func() { f.Close() }, nil
}
