// metaldetect simulates a metal-detection sensor, classifies readings
// against a threshold, and records detections to an append-only CSV log.
//
// Usage:
//
//	metaldetect              interactive menu (monitor / threshold / log)
//	metaldetect -plain       one monitoring session without the TUI
//	metaldetect -config f    read settings from f instead of metaldetect.yaml
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/luki/metaldetect/internal/config"
	"github.com/luki/metaldetect/internal/detector"
	"github.com/luki/metaldetect/internal/monitor"
	"github.com/luki/metaldetect/internal/sensor"
	"github.com/luki/metaldetect/internal/store"
	"github.com/luki/metaldetect/internal/viewer"
)

var (
	menuTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("51")).
			Background(lipgloss.Color("17")).
			Padding(0, 2)
	menuKeyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	menuItemStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	menuDimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	okStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("78"))
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "path of the YAML config file")
	plain := flag.Bool("plain", false, "run one monitoring session without the TUI")
	flag.Parse()

	level := slog.LevelWarn
	if *plain {
		level = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	st := store.New(cfg.LogFile)
	defer st.Close()

	sim := sensor.NewSimulator(nil)
	det := detector.New(detector.Config{Threshold: cfg.Threshold, Delay: cfg.Delay}, sim, st)

	if *plain {
		runPlain(det)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Config edits apply between sessions. The watcher hands reloaded
	// configs to the menu loop, which drains them before each action so
	// detector state is never touched while a session runs.
	pending := make(chan *config.Config, 1)
	if _, err := os.Stat(*configPath); err == nil {
		go func() {
			if err := config.Watch(ctx, *configPath, func(c *config.Config) {
				select {
				case <-pending:
				default:
				}
				pending <- c
			}); err != nil {
				slog.Error("config: watch failed", "err", err)
			}
		}()
	}

	runMenu(det, st, cfg.RecentLimit, pending)
}

// runMenu drives the interactive menu until the user quits or stdin
// closes.
func runMenu(det *detector.Detector, st *store.CSVStore, recentLimit int, pending <-chan *config.Config) {
	scanner := bufio.NewScanner(os.Stdin)

	for {
		select {
		case cfg := <-pending:
			applyConfig(det, st, cfg)
			recentLimit = cfg.RecentLimit
		default:
		}

		printMenu(det)
		fmt.Print("Enter your choice: ")
		if !scanner.Scan() {
			fmt.Println()
			return
		}

		switch strings.TrimSpace(scanner.Text()) {
		case "1":
			if err := monitor.Run(det, st.Path()); err != nil {
				fmt.Println(errorStyle.Render(fmt.Sprintf("monitor: %v", err)))
			}
		case "2":
			changeThreshold(det, scanner)
		case "3":
			if err := viewer.Run(st, recentLimit, det.Threshold()); err != nil {
				fmt.Println(errorStyle.Render(fmt.Sprintf("viewer: %v", err)))
			}
		case "4", "q":
			fmt.Println("Exiting. Goodbye!")
			return
		default:
			fmt.Println(errorStyle.Render("Invalid choice. Please try again."))
			fmt.Println()
		}
	}
}

func printMenu(det *detector.Detector) {
	fmt.Println(menuTitleStyle.Render("METAL ITEM DETECTOR"))
	fmt.Println(menuKeyStyle.Render("  1.") + menuItemStyle.Render(" Start monitoring"))
	fmt.Println(menuKeyStyle.Render("  2.") + menuItemStyle.Render(" Change detection threshold") +
		menuDimStyle.Render(fmt.Sprintf("  (current: %d)", det.Threshold())))
	fmt.Println(menuKeyStyle.Render("  3.") + menuItemStyle.Render(" View recent detections"))
	fmt.Println(menuKeyStyle.Render("  4.") + menuItemStyle.Render(" Quit"))
}

func changeThreshold(det *detector.Detector, scanner *bufio.Scanner) {
	fmt.Printf("Current threshold: %d\n", det.Threshold())
	fmt.Printf("Enter new threshold (%d - %d): ", detector.MinThreshold, detector.MaxThreshold)
	if !scanner.Scan() {
		return
	}

	value, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
	if err != nil {
		fmt.Println(errorStyle.Render("Invalid input. Threshold not changed."))
		fmt.Println()
		return
	}

	if err := det.SetThreshold(value); err != nil {
		fmt.Println(errorStyle.Render(fmt.Sprintf("%v. Threshold not changed.", err)))
		fmt.Println()
		return
	}

	fmt.Println(okStyle.Render(fmt.Sprintf("Threshold updated to %d", det.Threshold())))
	fmt.Println()
}

// applyConfig folds a reloaded config into the detector between
// sessions. A changed log_file is ignored until restart; the store owns
// an open handle bound to the original path.
func applyConfig(det *detector.Detector, st *store.CSVStore, cfg *config.Config) {
	if err := det.SetThreshold(cfg.Threshold); err != nil {
		slog.Warn("config: reloaded threshold rejected", "threshold", cfg.Threshold, "err", err)
	}
	if err := det.SetDelay(cfg.Delay); err != nil {
		slog.Warn("config: reloaded delay rejected", "delay", cfg.Delay, "err", err)
	}
	if cfg.LogFile != st.Path() {
		slog.Warn("config: log_file changes require a restart",
			"active", st.Path(), "requested", cfg.LogFile)
	}
}

// runPlain runs a single monitoring session printing one line per
// cycle, in the spirit of a serial console. Ctrl+C ends the session.
func runPlain(det *detector.Detector) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Println("--- Starting Metal Detection ---")
	fmt.Println("Press Ctrl+C to stop.")
	fmt.Println()

	det.Run(ctx, func(c detector.Cycle, err error) {
		status := okStyle.Render("Safe")
		if c.Detected {
			status = errorStyle.Render("METAL DETECTED ⚠")
		}
		fmt.Printf("Sensor Value: %4d | Status: %s\n", c.Value, status)
		if err != nil {
			fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("write error: %v", err)))
		}
	})

	fmt.Println("\nStopped monitoring.")
}
