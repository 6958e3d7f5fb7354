// Package cli implements the recall command line.
package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/recall/internal/core/domain"
	"github.com/custodia-labs/recall/internal/core/ports/driving"
	"github.com/custodia-labs/recall/internal/logger"
)

// Annotation values controlling what a command needs from Bootstrap.
const (
	annotationServices = "services"
	servicesNone       = "none"
	servicesSettings   = "settings"
)

// Watcher follows workspace changes until its context is done.
type Watcher interface {
	Run(ctx context.Context) error
}

// Reembedder re-embeds documents produced by a previous provider.
type Reembedder interface {
	Run(ctx context.Context) (domain.ReembedReport, error)
}

// Services holds the driving ports used by the commands.
type Services struct {
	Query      driving.QueryService
	Retrieval  driving.RetrievalService
	Sync       driving.SyncService
	Ingestion  driving.IngestionService
	Document   driving.DocumentService
	Memory     driving.SearchMemoryService
	Workspace  driving.WorkspaceService
	Settings   driving.SettingsService
	Watcher    Watcher
	Reembedder Reembedder
}

// Bootstrap builds the services for a workspace. When settingsOnly is true
// only Services.Settings is required, so broken AI settings can be repaired.
// The returned function releases everything that was opened.
type Bootstrap func(ctx context.Context, workspace string, settingsOnly bool) (*Services, func(), error)

var (
	version = "dev"

	workspaceDir string
	verbose      bool

	bootstrap Bootstrap
	cleanup   func()

	queryService     driving.QueryService
	retrievalService driving.RetrievalService
	syncService      driving.SyncService
	ingestionService driving.IngestionService
	documentService  driving.DocumentService
	memoryService    driving.SearchMemoryService
	workspaceService driving.WorkspaceService
	settingsService  driving.SettingsService
	watcher          Watcher
	reembedder       Reembedder
)

var rootCmd = &cobra.Command{
	Use:   "recall",
	Short: "Local-first retrieval for your notes",
	Long: `Recall indexes a folder of notes and answers questions about them.

Every question goes through retrieval first: relevant notes are found by
hybrid semantic and keyword search and injected as context before an
answer is generated.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&workspaceDir, "workspace", "w", ".", "workspace directory to index")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

// SetServices installs the services used by the commands.
func SetServices(s *Services) {
	if s == nil {
		s = &Services{}
	}
	queryService = s.Query
	retrievalService = s.Retrieval
	syncService = s.Sync
	ingestionService = s.Ingestion
	documentService = s.Document
	memoryService = s.Memory
	workspaceService = s.Workspace
	settingsService = s.Settings
	watcher = s.Watcher
	reembedder = s.Reembedder
}

// SetBootstrap installs the function that builds services before a command runs.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command context.
func Execute(v string) error {
	if v != "" {
		version = v
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer release()

	return rootCmd.ExecuteContext(ctx)
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	need := cmd.Annotations[annotationServices]
	if bootstrap == nil || need == servicesNone {
		return nil
	}

	services, closeFn, err := bootstrap(cmd.Context(), workspaceDir, need == servicesSettings)
	if err != nil {
		return err
	}
	SetServices(services)
	cleanup = closeFn
	return nil
}

func release() {
	if cleanup != nil {
		cleanup()
		cleanup = nil
	}
}

// errNotConfigured reports a command run without its service.
func errNotConfigured(name string) error {
	return errors.New(name + " service not configured")
}
