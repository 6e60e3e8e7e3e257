package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/davrell/reqnest/internal/bindings"
	"github.com/davrell/reqnest/internal/config"
	"github.com/davrell/reqnest/internal/engine"
	"github.com/davrell/reqnest/internal/store"
	"github.com/davrell/reqnest/internal/theme"
	"github.com/davrell/reqnest/internal/transfer"
	"github.com/davrell/reqnest/internal/ui"
	"github.com/davrell/reqnest/internal/workspace"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	var (
		workspacePath string
		importPath    string
		exportPath    string
		formatName    string
		themePath     string
		showVersion   bool
	)

	flag.StringVar(&workspacePath, "workspace", "", "Path to the workspace database")
	flag.StringVar(&importPath, "import", "", "Import collections from a JSON/YAML file and exit")
	flag.StringVar(&exportPath, "export", "", "Export the workspace to a JSON/YAML file and exit")
	flag.StringVar(&formatName, "format", "", "Interchange format for -import/-export (json or yaml)")
	flag.StringVar(&themePath, "theme", "", "Path to a palette override file")
	flag.BoolVar(&showVersion, "version", false, "Show reqnest version")
	flag.Parse()

	if showVersion {
		fmt.Printf("reqnest %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
		os.Exit(0)
	}

	settings, _, err := config.LoadSettings()
	if err != nil {
		log.Printf("settings load error: %v", err)
		settings = config.Settings{
			WorkspacePath: config.DefaultWorkspacePath(),
			Layout:        config.DefaultLayoutSettings(),
		}
	}
	if workspacePath != "" {
		if abs, absErr := filepath.Abs(workspacePath); absErr == nil {
			workspacePath = abs
		}
		settings.WorkspacePath = workspacePath
	}

	if themePath == "" {
		themePath = filepath.Join(config.Dir(), "theme.toml")
	}
	th, err := theme.Load(themePath)
	if err != nil {
		log.Printf("theme load error: %v", err)
		th = theme.DefaultTheme()
	}

	ctx := context.Background()
	st, err := store.Open(settings.WorkspacePath)
	if err != nil {
		log.Fatalf("open workspace: %v", err)
	}
	defer st.Close()
	if err := st.Init(ctx); err != nil {
		log.Fatalf("init workspace: %v", err)
	}

	eng, err := engine.New(ctx, st)
	if err != nil {
		log.Fatalf("load workspace: %v", err)
	}

	if importPath != "" {
		if err := runImport(ctx, eng, st, importPath, formatName); err != nil {
			log.Fatalf("import: %v", err)
		}
		fmt.Printf("Imported %s into %s\n", importPath, settings.WorkspacePath)
		return
	}
	if exportPath != "" {
		if err := runExport(eng, st, exportPath, formatName, settings.ExportFormat); err != nil {
			log.Fatalf("export: %v", err)
		}
		fmt.Printf("Exported workspace to %s\n", exportPath)
		return
	}

	keys, _, bindingErr := bindings.Load(config.Dir())
	if bindingErr != nil {
		log.Printf("bindings load error: %v", bindingErr)
		keys = bindings.DefaultMap()
	}

	model := ui.New(eng, settings, th, keys)
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		log.Fatalf("ui error: %v", err)
	}
}

func runImport(ctx context.Context, eng *engine.Engine, st *store.Store, path, formatName string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	doc, err := transfer.Decode(data, resolveFormat(formatName, path, ""))
	if err != nil {
		return err
	}
	// Payload rows do not exist until the structure is synced, so buffer
	// payloads during the tree import and write them afterwards.
	payloads := make(map[string]workspace.Payload)
	buffer := func(id string, p workspace.Payload) error {
		payloads[id] = p
		return nil
	}
	if err := transfer.Import(doc, eng.Model(), buffer); err != nil {
		return err
	}
	err = st.SyncStructure(
		ctx,
		eng.Model().Collections(),
		eng.Model().Folders(),
		eng.Model().Requests(),
	)
	if err != nil {
		return err
	}
	for id, p := range payloads {
		if err := st.SavePayload(id, p); err != nil {
			return err
		}
	}
	return nil
}

func runExport(eng *engine.Engine, st *store.Store, path, formatName, settingsFormat string) error {
	doc, err := transfer.Export(eng.Model(), st.LoadPayload)
	if err != nil {
		return err
	}
	data, err := transfer.Encode(doc, resolveFormat(formatName, path, settingsFormat))
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// resolveFormat picks the interchange format: explicit flag first, then the
// file extension, then the configured default, then JSON.
func resolveFormat(flagValue, path, settingsFormat string) transfer.Format {
	pick := strings.ToLower(strings.TrimSpace(flagValue))
	if pick == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			pick = "yaml"
		case ".json":
			pick = "json"
		}
	}
	if pick == "" {
		pick = config.NormaliseExportFormat(settingsFormat)
	}
	if pick == "yaml" {
		return transfer.FormatYAML
	}
	return transfer.FormatJSON
}
