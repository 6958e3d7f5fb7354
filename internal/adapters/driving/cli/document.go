package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/recall/internal/core/domain"
)

const timeLayout = "2006-01-02 15:04:05"

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Manage indexed documents",
	Long:  `List, view, remove, or refresh indexed documents.`,
}

var documentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List indexed documents",
	Args:  cobra.NoArgs,
	RunE:  runDocumentList,
}

var documentGetCmd = &cobra.Command{
	Use:   "get [doc-id]",
	Short: "Show document info",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentGet,
}

var documentContentCmd = &cobra.Command{
	Use:   "content [doc-id]",
	Short: "Print document content",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentContent,
}

var documentDetailsCmd = &cobra.Command{
	Use:   "details [doc-id]",
	Short: "Show document index metadata",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentDetails,
}

var documentRemoveCmd = &cobra.Command{
	Use:   "remove [doc-id]",
	Short: "Remove a document from the index",
	Long:  `Removes a document with its embedding and chunks. The file itself is not touched.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentRemove,
}

var documentRefreshCmd = &cobra.Command{
	Use:   "refresh [doc-id]",
	Short: "Re-index a single document from its file",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentRefresh,
}

var documentOpenCmd = &cobra.Command{
	Use:   "open [doc-id]",
	Short: "Open document in default application",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentOpen,
}

// documentTag is a flag for the list command.
var documentTag string

func init() {
	documentListCmd.Flags().StringVarP(&documentTag, "tag", "t", "", "only list documents with this tag")

	documentCmd.AddCommand(documentListCmd)
	documentCmd.AddCommand(documentGetCmd)
	documentCmd.AddCommand(documentContentCmd)
	documentCmd.AddCommand(documentDetailsCmd)
	documentCmd.AddCommand(documentRemoveCmd)
	documentCmd.AddCommand(documentRefreshCmd)
	documentCmd.AddCommand(documentOpenCmd)
	rootCmd.AddCommand(documentCmd)
}

func runDocumentList(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errNotConfigured("document")
	}

	var (
		docs []domain.Document
		err  error
	)
	if documentTag != "" {
		docs, err = documentService.ListByTag(cmd.Context(), documentTag)
	} else {
		docs, err = documentService.List(cmd.Context())
	}
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if len(docs) == 0 {
		cmd.Println("No documents indexed.")
		return nil
	}

	for i := range docs {
		cmd.Printf("  %s\n", docs[i].ID)
		cmd.Printf("    Title: %s\n", docs[i].Title)
		cmd.Printf("    Path:  %s\n", docs[i].SourcePath)
		if len(docs[i].Tags) > 0 {
			cmd.Printf("    Tags:  %s\n", strings.Join(docs[i].Tags, ", "))
		}
		cmd.Println()
	}

	cmd.Printf("Total: %d documents\n", len(docs))
	return nil
}

func runDocumentGet(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errNotConfigured("document")
	}

	doc, err := documentService.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	cmd.Printf("Document: %s\n\n", doc.ID)
	cmd.Printf("  Title:    %s\n", doc.Title)
	cmd.Printf("  Path:     %s\n", doc.SourcePath)
	cmd.Printf("  Type:     %s\n", doc.FileType)
	cmd.Printf("  Created:  %s\n", doc.CreatedAt.Format(timeLayout))
	cmd.Printf("  Indexed:  %s\n", doc.IndexedAt.Format(timeLayout))
	if len(doc.Tags) > 0 {
		cmd.Printf("  Tags:     %s\n", strings.Join(doc.Tags, ", "))
	}
	return nil
}

func runDocumentContent(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errNotConfigured("document")
	}

	doc, err := documentService.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get document content: %w", err)
	}

	cmd.Println(doc.Content)
	return nil
}

func runDocumentDetails(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errNotConfigured("document")
	}

	details, err := documentService.Details(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get document details: %w", err)
	}

	cmd.Printf("Document Details: %s\n\n", details.ID)
	cmd.Printf("  Title:       %s\n", details.Title)
	cmd.Printf("  Path:        %s\n", details.SourcePath)
	cmd.Printf("  Checksum:    %s\n", details.Checksum)
	cmd.Printf("  Chunks:      %d\n", details.ChunkCount)
	if details.EmbeddingProvider != "" {
		cmd.Printf("  Embedding:   %s (%d dimensions)\n", details.EmbeddingProvider, details.Dimensions)
	} else {
		cmd.Printf("  Embedding:   (none)\n")
	}
	cmd.Printf("  Accessed:    %d times\n", details.AccessCount)
	if !details.LastAccessed.IsZero() {
		cmd.Printf("  Last access: %s\n", details.LastAccessed.Format(timeLayout))
	}
	return nil
}

func runDocumentRemove(cmd *cobra.Command, args []string) error {
	if documentService == nil || ingestionService == nil {
		return errNotConfigured("document")
	}

	doc, err := documentService.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}
	if err := ingestionService.Remove(cmd.Context(), doc.SourcePath); err != nil {
		return fmt.Errorf("failed to remove document: %w", err)
	}

	cmd.Printf("Document %s removed from index.\n", doc.ID)
	return nil
}

func runDocumentRefresh(cmd *cobra.Command, args []string) error {
	if documentService == nil || syncService == nil {
		return errNotConfigured("document")
	}

	doc, err := documentService.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	cmd.Printf("Refreshing document %s...\n", doc.ID)
	report, err := syncService.IndexPaths(cmd.Context(), []string{doc.SourcePath})
	if err != nil {
		return fmt.Errorf("failed to refresh document: %w", err)
	}
	if report.Failed > 0 {
		return fmt.Errorf("failed to refresh document: %w", report.Outcomes[0].Err)
	}

	if report.Skipped > 0 {
		cmd.Printf("Document %s is up to date.\n", doc.ID)
	} else {
		cmd.Printf("Document %s refreshed successfully.\n", doc.ID)
	}
	return nil
}

func runDocumentOpen(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errNotConfigured("document")
	}

	if err := documentService.Open(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to open document: %w", err)
	}

	cmd.Printf("Opened document %s in default application.\n", args[0])
	return nil
}
