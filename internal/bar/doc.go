// Package bar estimates the vertical position of a horizontal pull-up bar.
//
// Responsibilities: scoring near-horizontal line segments, the edge-density
// projection fallback, clustering candidates into row bins, and temporal
// smoothing with short-term memory.
// Key types: Detector, EdgeFrame, Candidate.
//
// Pixel work (grayscale, contrast enhancement, edge and line detection) is
// delegated to an EdgeSource; see package cvedge for the OpenCV-backed one.
// This package has no cgo dependency.
package bar
