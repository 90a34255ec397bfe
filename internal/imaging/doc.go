// Package imaging provides the image plumbing shared by the meme pipeline.
//
// It decodes request images into a Source that carries the original bytes
// and their content hash, caches decoded template images by path, encodes
// and saves rendered output, samples background colors and builds edge maps
// for the heuristic text finder.
//
// # Coordinate System
//
// All pixel coordinates are 0-based with (0,0) at the top-left corner. For
// rectangles, Min is inclusive and Max is exclusive.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. The remaining functions are
// stateless and may be called concurrently on different images.
package imaging
