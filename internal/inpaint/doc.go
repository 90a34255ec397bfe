// Package inpaint removes text from images by filling masked regions from
// their surroundings.
//
// Two strategies share one contract. Telea fills the hole by fast marching
// from its edge inward, weighting known neighbors by direction, distance
// and level-set proximity, then softens the filled area with a small
// Gaussian blur. Fast peels the hole one ring at a time, giving each pixel
// the Lab mean of its known neighbors. Both leave pixels outside the mask
// untouched.
package inpaint
