package main

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nkoval/ragman/internal/config"
	"github.com/nkoval/ragman/internal/docparse"
)

// --- upload ---

var uploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Upload a manual document for ingestion",
	Long: `Upload a manual document for ingestion.

Examples:
  ragman upload ./user-guide.docx
  ragman upload ./release-notes.pdf`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		if !docparse.Supported(path) {
			return fmt.Errorf("unsupported file type: %s", path)
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		printStep("Uploading %s", filepath.Base(path))
		resp, err := client.postFile(cmd.Context(), "/upload", "file", path)
		if err != nil {
			return err
		}

		var result map[string]string
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		printSuccess("%s", result["message"])
		return nil
	},
}

// --- ask ---

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a question about the ingested manuals",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		question := strings.Join(args, " ")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		err = client.stream(cmd.Context(), "/ask", map[string]string{"question": question}, func(token string) {
			fmt.Print(token)
		})
		if err != nil {
			return err
		}
		fmt.Println()
		return nil
	},
}

// --- documents ---

var documentsCmd = &cobra.Command{
	Use:   "documents",
	Short: "List ingested source documents",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/documents")
		if err != nil {
			return err
		}

		var result struct {
			Documents []string `json:"documents"`
		}
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		if len(result.Documents) == 0 {
			fmt.Println("No documents ingested yet.")
			return nil
		}
		for _, doc := range result.Documents {
			fmt.Println(doc)
		}
		return nil
	},
}

// --- queue ---

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Show image-analysis progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/queue-status")
		if err != nil {
			return err
		}

		var snap struct {
			PendingImages   int  `json:"pending_images"`
			TotalImages     int  `json:"total_images"`
			ProcessedImages int  `json:"processed_images"`
			IsProcessing    bool `json:"is_processing"`
			CurrentImage    *struct {
				Filename  string `json:"filename"`
				SourceDoc string `json:"source_doc"`
			} `json:"current_image"`
		}
		if err := decodeJSON(resp, &snap); err != nil {
			return err
		}

		printStatus("Pending", "%d", snap.PendingImages)
		printStatus("Processed", "%d / %d", snap.ProcessedImages, snap.TotalImages)
		if snap.CurrentImage != nil {
			printStatus("Analyzing", "%s (from %s)", snap.CurrentImage.Filename, snap.CurrentImage.SourceDoc)
		} else if !snap.IsProcessing {
			printStatus("Queue", "idle")
		}
		return nil
	},
}

// --- status ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show ragman system status",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			printError("config error: %v", err)
			return nil
		}

		serverURL := fmt.Sprintf("http://127.0.0.1:%d", cfg.Server.Port)
		client := &http.Client{Timeout: 2 * time.Second}

		resp, err := client.Get(serverURL + "/health")
		if err != nil {
			printStatus("Server", "stopped")
			printWarning("start it with 'ragman serve'")
		} else {
			resp.Body.Close()
			if resp.StatusCode == 200 {
				printStatus("Server", "running on port %d", cfg.Server.Port)
			} else {
				printStatus("Server", "error (HTTP %d)", resp.StatusCode)
			}
		}

		printStatus("Text model", "%s", cfg.OpenAI.TextModel)
		printStatus("Vision model", "%s", cfg.OpenAI.VisionModel)
		printStatus("Embed model", "%s", cfg.OpenAI.EmbedModel)
		printStatus("Data dir", "%s", cfg.Storage.DataDir)
		return nil
	},
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		keys := config.ShowAll(cfg)
		for _, k := range keys {
			fmt.Printf("  %s = %s\n", colorize(colorBold, k.Key), k.Value)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
