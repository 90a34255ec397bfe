// Package detection turns raw OCR fragments into text blocks.
//
// A Detector asks an ocr.Engine for fragments, drops the ones below the
// confidence floor and merges the rest into blocks with Merge. Results are
// cached by the content hash of the image bytes together with the image
// shape, so a cached entry can be reused for the same image decoded at a
// different size.
//
// # Merging
//
// Fragments are walked from top to bottom. A fragment joins the block
// above it when it sits at most V pixels below and overlaps it
// horizontally, or when it sits at most V/2 pixels below and at most V
// pixels to the side. V defaults to 50.
//
// # Coordinate System
//
// Polygons are in pixels of the detected image with the origin at the top
// left. Merged blocks are axis-aligned rectangles.
package detection
