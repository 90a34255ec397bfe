// Package ocr defines the raw text-detection engine used by the pipeline
// and its two implementations.
//
// # Engines
//
//   - Tesseract: native OCR through gosseract/v2. Requires cgo and an
//     installed Tesseract with language data (apt-get install tesseract-ocr,
//     brew install tesseract). Builds without cgo get a stub that reports
//     ErrUnavailable.
//   - Heuristic: an edge-density text finder that needs no native
//     libraries. It reports where text probably is but not what it says.
//
// Engines return fragments in their own order and do not filter or merge;
// that is the job of the detection package.
//
// # Confidence
//
// Confidences are normalized to [0,1]. Tesseract reports 0-100 and is
// divided by 100.
package ocr
