package postprocess

import (
	"sort"

	"github.com/posekit/go-posekit/postprocess/result"
)

// Both suppression strategies walk the candidate list greedily in
// descending confidence order and are O(n²) in the number of surviving
// detections.  Per frame counts stay small (typically under 200) so no
// spatial index is used, adding one would also change the tie break
// order the stable sort guarantees.

// IoUNMS applies Non-Maximum Suppression using bounding box overlap.
// Detections are ordered by descending confidence with ties keeping
// their input order, then each accepted detection suppresses every
// later detection whose IoU with it exceeds iouThreshold.  The
// accepted detections are returned in confidence descending order.
func IoUNMS(dets []result.Detection, iouThreshold float32) []result.Detection {

	n := len(dets)

	if n == 0 {
		return nil
	}

	order := sortByConfidence(dets)

	used := make([]bool, n)
	filtered := make([]result.Detection, 0, n)

	for i := 0; i < n; i++ {

		if used[i] {
			continue
		}

		anchor := dets[order[i]]
		filtered = append(filtered, anchor)
		used[i] = true

		for j := i + 1; j < n; j++ {

			if used[j] {
				continue
			}

			if calculateIoU(anchor.Box, dets[order[j]].Box) > iouThreshold {
				used[j] = true
			}
		}
	}

	return filtered
}

// DistanceNMS applies Non-Maximum Suppression using the Euclidean
// distance between detection anchor points, used when detections are
// single points such as wrist keypoints rather than boxes.  A later
// detection is suppressed when its distance to an accepted one is
// strictly less than distThreshold.
func DistanceNMS(dets []result.Detection, distThreshold float32) []result.Detection {

	n := len(dets)

	if n == 0 {
		return nil
	}

	order := sortByConfidence(dets)

	used := make([]bool, n)
	filtered := make([]result.Detection, 0, n)

	for i := 0; i < n; i++ {

		if used[i] {
			continue
		}

		anchor := dets[order[i]]
		filtered = append(filtered, anchor)
		used[i] = true

		for j := i + 1; j < n; j++ {

			if used[j] {
				continue
			}

			if pointDistance(anchor.Anchor(), dets[order[j]].Anchor()) < distThreshold {
				used[j] = true
			}
		}
	}

	return filtered
}

// sortByConfidence returns an index ordering of the detections by
// descending confidence.  The sort is stable so equal confidence
// detections keep their input order, which keeps suppression results
// deterministic.
func sortByConfidence(dets []result.Detection) []int {

	order := make([]int, len(dets))

	for i := range order {
		order[i] = i
	}

	sort.SliceStable(order, func(a, b int) bool {
		return dets[order[a]].Confidence > dets[order[b]].Confidence
	})

	return order
}
