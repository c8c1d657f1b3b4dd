package tracker

// DetectionsToBoxes takes the detector results for a frame and converts them
// into the boxes passed to CentroidTracker.Update.  Only the first maxDets
// detections are considered, and of those only the ones scoring above
// scoreThresh are kept.  A maxDets of zero or less considers all detections.
func DetectionsToBoxes(dets []Detection, scoreThresh float32, maxDets int) []Box {

	limit := len(dets)

	if maxDets > 0 && maxDets < limit {
		limit = maxDets
	}

	boxes := make([]Box, 0, limit)

	for _, det := range dets[:limit] {
		if det.Score > scoreThresh {
			boxes = append(boxes, det.Box)
		}
	}

	return boxes
}
