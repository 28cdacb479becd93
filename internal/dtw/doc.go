// Package dtw computes Dynamic Time Warping distances between numeric series.
//
// DTW aligns two sequences by a monotonic warping path that starts at (0,0), ends at
// (n-1,m-1) and at every step advances in a, in b, or in both. The distance is the minimal
// sum of pointwise costs |a[i]-b[j]| along such a path.
//
// Three evaluation methods are available:
//
//   - MethodFull: exact dynamic programming over the whole n×m grid. O(n·m).
//   - MethodBand: Sakoe–Chiba band, only cells with |i-j| <= Radius (scaled to the grid
//     diagonal when lengths differ). O(n·Radius). Equals MethodFull once Radius >= max(n,m)-1.
//   - MethodFast: FastDTW (Salvador & Chan). Solves a half-resolution problem recursively,
//     projects its path back and refines inside a window widened by Radius. Near linear,
//     exact when both series are shorter than Radius+2.
//
// Distances are computed with a rolling pair of rows unless the path is requested, in which
// case the full cost matrix is kept for backtracking.
package dtw
