package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/kazurobot/kazu-core/behavior"
	"github.com/kazurobot/kazu-core/config"
	"github.com/kazurobot/kazu-core/hardware"
	"github.com/kazurobot/kazu-core/judge"
	"github.com/kazurobot/kazu-core/light"
	"github.com/kazurobot/kazu-core/motion"
	"github.com/kazurobot/kazu-core/sense"
)

const banner = `
██╗  ██╗ █████╗ ███████╗██╗   ██╗
██║ ██╔╝██╔══██╗╚══███╔╝██║   ██║
█████╔╝ ███████║  ███╔╝ ██║   ██║
██╔═██╗ ██╔══██║ ███╔╝  ██║   ██║
██║  ██╗██║  ██║███████╗╚██████╔╝
╚═╝  ╚═╝╚═╝  ╚═╝╚══════╝ ╚═════╝

Autonomous Combat Robot Core`

var (
	styleTitle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#E67E22"))
	styleOK    = lipgloss.NewStyle().Foreground(lipgloss.Color("#2ECC71"))
	styleFail  = lipgloss.NewStyle().Foreground(lipgloss.Color("#E74C3C"))
	styleMuted = lipgloss.NewStyle().Foreground(lipgloss.Color("#7F8C8D"))
)

var (
	appConfigPath string
	runConfigPath string
	logLevel      string

	noCamera  bool
	teamColor string

	rootCmd = &cobra.Command{
		Use:           "kazu",
		Short:         "Behavior core for the kazu combat robot",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	runCmd = &cobra.Command{
		Use:   "run [mode]",
		Short: "Compose a battle graph for the given run mode and drive it",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runBattle,
	}

	checkCmd = &cobra.Command{
		Use:   "check",
		Short: "Report device connectivity before a match",
		RunE:  runChecks,
	}

	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Inspect and export configuration documents",
	}

	configShowCmd = &cobra.Command{
		Use:   "show",
		Short: "Print the effective app and run configuration",
		RunE:  showConfig,
	}

	configExportCmd = &cobra.Command{
		Use:   "export",
		Short: "Write factory-default configuration documents",
		RunE:  exportConfig,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&appConfigPath, "app-config", "a",
		os.Getenv(config.EnvAppConfigPath), "path to the app config yaml")
	rootCmd.PersistentFlags().StringVarP(&runConfigPath, "run-config", "r",
		os.Getenv(config.EnvRunConfigPath), "path to the run config yaml")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "",
		"override log level (DEBUG, INFO, WARN, ERROR)")

	runCmd.Flags().BoolVar(&noCamera, "no-camera", false,
		"disable the tag camera even when the app config enables it")
	runCmd.Flags().StringVar(&teamColor, "team-color", "",
		"override the configured team color (yellow or blue)")

	configCmd.AddCommand(configShowCmd, configExportCmd)
	rootCmd.AddCommand(runCmd, checkCmd, configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, styleFail.Render("error:"), err)
		os.Exit(1)
	}
}

// loadConfigs resolves the two documents from flags (or their env fallbacks),
// applies CLI overrides and installs the default logger at the chosen level.
func loadConfigs() (*config.App, *config.Run, error) {
	app := config.DefaultApp()
	if appConfigPath != "" {
		loaded, err := config.LoadApp(appConfigPath)
		if err != nil {
			return nil, nil, err
		}
		app = loaded
	}
	run := config.DefaultRun()
	if runConfigPath != "" {
		loaded, err := config.LoadRun(runConfigPath)
		if err != nil {
			return nil, nil, err
		}
		run = loaded
	}

	if logLevel != "" {
		app.Debug.LogLevel = strings.ToUpper(logLevel)
	}
	if teamColor != "" {
		app.Vision.TeamColor = teamColor
	}
	if noCamera {
		app.Vision.UseCamera = false
	}
	if err := app.Validate(); err != nil {
		return nil, nil, err
	}

	var level slog.Level
	switch app.Debug.LogLevel {
	case "DEBUG":
		level = slog.LevelDebug
	case "WARN":
		level = slog.LevelWarn
	case "ERROR":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return app, run, nil
}

func runBattle(cmd *cobra.Command, args []string) error {
	app, run, err := loadConfigs()
	if err != nil {
		return err
	}

	modeStr := os.Getenv(config.EnvRunMode)
	if len(args) > 0 {
		modeStr = args[0]
	}
	mode, err := config.ParseRunMode(modeStr)
	if err != nil {
		return err
	}

	fmt.Println(styleTitle.Render(banner))
	slog.Info("composing battle graph", "mode", mode)

	// Real drivers attach here; the bench stand-ins keep desk runs working.
	board := hardware.NullBoard{ADCLevel: 2200, ADCCount: 10, IOCount: 8}
	var act hardware.Controller = hardware.NullController{}
	var tags hardware.TagDetector
	if app.Vision.UseCamera {
		tags = hardware.NullTagDetector{Tag: judge.NoTag}
	}

	runCtx := motion.NewContext(config.DefaultContext())
	recorded := func() []float64 {
		pack, _ := runCtx.Get(config.CtxRecordedPack).([]float64)
		return pack
	}
	senses := sense.NewBuilder(hardware.SamplerGroups(board))
	judges := judge.NewFactory(app, run, senses, tags, recorded, slog.Default())
	lights := light.NewRegistry(light.Noop{}, slog.Default())
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	builder := behavior.NewBuilder(app, run, judges, runCtx, rng, lights, slog.Default())
	graph, err := builder.Battle(board, mode)
	if err != nil {
		return fmt.Errorf("composing %s graph: %w", mode, err)
	}
	slog.Info("battle graph composed", "mode", mode, "transitions", len(graph.Transitions))

	if err := act.Open(); err != nil {
		return fmt.Errorf("opening motor channel: %w", err)
	}
	defer act.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	interval := time.Duration(run.Perf.CheckingInterval * float64(time.Second))
	runner := motion.NewRunner(act, runCtx, interval, slog.Default())
	return runner.Run(ctx, graph.Start, graph.Transitions)
}

func runChecks(cmd *cobra.Command, args []string) error {
	app, _, err := loadConfigs()
	if err != nil {
		return err
	}

	fmt.Println(styleTitle.Render("device connectivity"))

	board := hardware.NullBoard{ADCLevel: 2200, ADCCount: 10, IOCount: 8}
	act := hardware.NullController{}

	results := []struct {
		name string
		ok   bool
	}{
		{"motor", hardware.CheckMotor(act)},
		{"adc", hardware.CheckADC(board)},
		{"io", hardware.CheckIO(board)},
		{"mpu", hardware.CheckMPU(board)},
		{"power", hardware.CheckPower(board)},
	}
	if app.Vision.UseCamera {
		tags := hardware.NullTagDetector{Tag: judge.NoTag}
		results = append(results, struct {
			name string
			ok   bool
		}{"camera", hardware.CheckCamera(tags, app.Vision.CameraDeviceID)})
	} else {
		fmt.Println(styleMuted.Render("  camera  skipped (disabled)"))
	}

	failed := 0
	for _, res := range results {
		mark := styleOK.Render("ok")
		if !res.ok {
			mark = styleFail.Render("FAIL")
			failed++
		}
		fmt.Printf("  %-7s %s\n", res.name, mark)
	}
	if failed > 0 {
		return fmt.Errorf("%d device check(s) failed", failed)
	}
	return nil
}

func showConfig(cmd *cobra.Command, args []string) error {
	app, run, err := loadConfigs()
	if err != nil {
		return err
	}
	fmt.Println(styleTitle.Render("# app config"))
	if err := config.WriteApp(os.Stdout, app); err != nil {
		return err
	}
	fmt.Println(styleTitle.Render("# run config"))
	return config.WriteRun(os.Stdout, run)
}

func exportConfig(cmd *cobra.Command, args []string) error {
	writeDoc := func(path string, write func(f *os.File) error) error {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		return write(f)
	}

	appPath := appConfigPath
	if appPath == "" {
		appPath = "app.yaml"
	}
	runPath := runConfigPath
	if runPath == "" {
		runPath = "run.yaml"
	}

	if err := writeDoc(appPath, func(f *os.File) error {
		return config.WriteApp(f, config.DefaultApp())
	}); err != nil {
		return fmt.Errorf("exporting app config: %w", err)
	}
	if err := writeDoc(runPath, func(f *os.File) error {
		return config.WriteRun(f, config.DefaultRun())
	}); err != nil {
		return fmt.Errorf("exporting run config: %w", err)
	}
	fmt.Println(styleOK.Render("exported"), styleMuted.Render(appPath+", "+runPath))
	return nil
}
