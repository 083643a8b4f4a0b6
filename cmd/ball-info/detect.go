package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/ironsheep/ball-info/internal/detection"
	"github.com/ironsheep/ball-info/internal/imaging"
)

type detectResult struct {
	Path       string                `json:"path"`
	Detections []detection.Detection `json:"detections"`
	Error      string                `json:"error,omitempty"`
}

// runDetect prints one JSON line per image. A failing image gets an error
// line and does not stop the others; the combined error is returned at the
// end.
func runDetect(paths []string, annotateDir string, detector *detection.Detector, w io.Writer, logger *zap.Logger) error {
	enc := json.NewEncoder(w)
	var errs error
	for _, path := range paths {
		res := detectResult{Path: path, Detections: []detection.Detection{}}
		err := detectOne(path, annotateDir, detector, &res)
		if err != nil {
			res.Error = err.Error()
			errs = multierr.Append(errs, errors.Wrap(err, path))
		}
		logger.Debug("detected", zap.String("path", path), zap.Int("balls", len(res.Detections)))
		if err := enc.Encode(res); err != nil {
			return errors.Wrap(err, "write result")
		}
	}
	return errs
}

func detectOne(path, annotateDir string, detector *detection.Detector, res *detectResult) error {
	frame, err := imaging.LoadFrameFile(path)
	if err != nil {
		return err
	}
	dets, err := detector.Detect(frame)
	if err != nil {
		return err
	}
	res.Detections = append(res.Detections, dets...)

	if annotateDir == "" {
		return nil
	}
	img, err := detector.Annotate(frame, dets)
	if err != nil {
		return err
	}
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return imaging.SavePNG(filepath.Join(annotateDir, base+"-annotated.png"), img)
}

func printClasses(w io.Writer, table detection.ColorTable) error {
	for _, c := range table {
		if _, err := fmt.Fprintf(w, "%-8s lower %s upper %s\n", c.Name, c.Lower, c.Upper); err != nil {
			return err
		}
	}
	return nil
}
