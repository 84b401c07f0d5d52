package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/TIANLI0/WallTint/editor"
	"github.com/TIANLI0/WallTint/model"
	"github.com/spf13/cobra"
)

var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Recolor the regions under the given pixels in one pass",
	Long: `Upload an image to the colorizer, select the region under every --click
point in order, apply the color to all of them and save the result.

Example:
  walltint edit --image house.jpg --click 120,340 --click 410,300 --color "#3366cc" --opacity 0.8`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if editFlags.color != "" {
			cfg.Editor.Color = editFlags.color
		}
		if cmd.Flags().Changed("opacity") {
			cfg.Editor.Opacity = editFlags.opacity
		}
		if editFlags.backend != "" {
			cfg.Client.BaseURL = editFlags.backend
		}

		points, err := parseClicks(editFlags.clicks)
		if err != nil {
			return err
		}
		session, err := newSession(cfg)
		if err != nil {
			return err
		}
		return runEdit(cmd, session, editFlags.image, points, editFlags.out)
	},
}

var editFlags struct {
	image   string
	clicks  []string
	color   string
	opacity float64
	out     string
	backend string
}

func init() {
	rootCmd.AddCommand(editCmd)

	editCmd.Flags().StringVarP(&editFlags.image, "image", "i", "", "image to recolor")
	editCmd.Flags().StringArrayVar(&editFlags.clicks, "click", nil, "pixel x,y inside a region, repeatable")
	editCmd.Flags().StringVar(&editFlags.color, "color", "", "hex color, overrides editor.color")
	editCmd.Flags().Float64Var(&editFlags.opacity, "opacity", 0.6, "opacity in (0, 1], overrides editor.opacity")
	editCmd.Flags().StringVarP(&editFlags.out, "out", "o", "", "output path (defaults to editor.download_name)")
	editCmd.Flags().StringVar(&editFlags.backend, "backend", "", "colorizer base URL, overrides client.base_url")
	_ = editCmd.MarkFlagRequired("image")
}

type pixel struct{ x, y int }

// parseClicks 解析 "x,y" 形式的像素坐标
func parseClicks(values []string) ([]pixel, error) {
	if len(values) == 0 {
		return nil, errors.New("at least one --click is required")
	}
	points := make([]pixel, 0, len(values))
	for _, v := range values {
		xs, ys, ok := strings.Cut(v, ",")
		if !ok {
			return nil, fmt.Errorf("invalid click %q, want x,y", v)
		}
		x, errX := strconv.Atoi(strings.TrimSpace(xs))
		y, errY := strconv.Atoi(strings.TrimSpace(ys))
		if errX != nil || errY != nil || x < 0 || y < 0 {
			return nil, fmt.Errorf("invalid click %q, want non-negative integers", v)
		}
		points = append(points, pixel{x, y})
	}
	return points, nil
}

func runEdit(cmd *cobra.Command, session *editor.Session, imagePath string, points []pixel, out string) error {
	ctx := cmd.Context()
	w := cmd.OutOrStdout()

	data, err := os.ReadFile(imagePath)
	if err != nil {
		return fmt.Errorf("read image: %w", err)
	}
	if _, err := session.Open(filepath.Base(imagePath), data); err != nil {
		return err
	}
	msg, err := session.Upload(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, msg)

	for _, p := range points {
		id, err := session.RegisterPixel(ctx, p.x, p.y)
		if err != nil {
			fmt.Fprintf(w, "skip (%d, %d): %v\n", p.x, p.y, err)
			continue
		}
		fmt.Fprintf(w, "selected region %s at (%d, %d)\n", id, p.x, p.y)
	}

	report, err := session.Apply(ctx)
	for _, f := range report.Failed() {
		fmt.Fprintf(w, "region %s failed: %v\n", f.Region, f.Err)
	}
	if err != nil {
		if errors.Is(err, editor.ErrEmptySelection) || errors.Is(err, model.ErrNoEditedImage) {
			return fmt.Errorf("nothing was recolored: %w", err)
		}
		return err
	}

	if out == "" {
		out = cfg.Editor.DownloadName
	}
	if err := os.WriteFile(out, report.Image.Data, 0644); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	fmt.Fprintf(w, "saved %s (%d/%d regions)\n", out, len(report.Results)-len(report.Failed()), len(report.Results))
	return nil
}
