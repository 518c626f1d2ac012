package main

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"lookout/internal/config"
)

func newSendCommand(ctx *commandContext) *cobra.Command {
	var filePath, title, subtitle, body, media string
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send a notification through the daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := buildSendPayload(filePath, title, subtitle, body, media)
			if err != nil {
				return err
			}

			client, err := ctx.client()
			if err != nil {
				return err
			}
			reply, err := client.Notify(cmd.Context(), payload)
			if err != nil {
				return err
			}

			if jsonOut {
				return writeJSON(cmd, reply)
			}

			stdout := cmd.OutOrStdout()
			if reply.Enhanced {
				fmt.Fprintf(stdout, "Notification delivered with enhancement (event %s)\n", reply.EventID)
			} else {
				fmt.Fprintf(stdout, "Notification delivered without enhancement (event %s)\n", reply.EventID)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&filePath, "file", "f", "", "Path to a notification JSON payload (overrides the other flags)")
	cmd.Flags().StringVar(&title, "title", "Lookout test notification", "Notification title")
	cmd.Flags().StringVar(&subtitle, "subtitle", "", "Notification subtitle")
	cmd.Flags().StringVar(&body, "body", "", "Notification body text")
	cmd.Flags().StringVar(&media, "media", "", "Image to attach: a file path, http(s) URL, or data: URL")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the raw daemon response as JSON")
	return cmd
}

func buildSendPayload(filePath, title, subtitle, body, media string) ([]byte, error) {
	if strings.TrimSpace(filePath) != "" {
		path, err := config.ExpandPath(filePath)
		if err != nil {
			return nil, fmt.Errorf("resolve payload path: %w", err)
		}
		payload, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read payload file: %w", err)
		}
		return payload, nil
	}

	envelope := map[string]any{"title": title}
	options := map[string]any{}
	if subtitle != "" {
		options["subtitle"] = subtitle
	}
	if body != "" {
		options["body"] = body
	}
	if len(options) > 0 {
		envelope["options"] = options
	}

	handle, err := resolveMediaHandle(media)
	if err != nil {
		return nil, err
	}
	if handle != "" {
		envelope["media"] = handle
	}

	return json.Marshal(envelope)
}

// resolveMediaHandle turns a local image path into a data: URL; URL-shaped
// values pass through untouched since the daemon accepts them as handles.
func resolveMediaHandle(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", nil
	}
	if strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://") || strings.HasPrefix(value, "data:") {
		return value, nil
	}

	path, err := config.ExpandPath(value)
	if err != nil {
		return "", fmt.Errorf("resolve media path: %w", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read media file: %w", err)
	}
	mime := http.DetectContentType(data)
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
