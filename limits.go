package omf

// Limits are the configurable safety bounds a Reader enforces while parsing
// the index and any image members (spec.md §6 "Configuration knobs").
// A zero value for any single field disables that bound (for
// ValidationBudget, zero means an unbounded problem list); an entirely zero
// Limits is replaced by DefaultLimits() in NewReader.
type Limits struct {
	// JSONBytes bounds the uncompressed size of index.json.gz. Default 1 MiB.
	JSONBytes int64
	// ImageBytes bounds the raw byte length of an image member, applied
	// before decoding (spec.md §9 "Open question: image size limits on
	// read" resolved toward the stricter reading). Default 16 GiB.
	ImageBytes uint64
	// ImageDim bounds an image's width and height in pixels. Zero means
	// unbounded; default is unbounded.
	ImageDim uint64
	// ValidationBudget caps the number of concrete problems the Validator
	// records before it starts summarizing overflow as MoreErrors/
	// MoreWarnings. Default 100.
	ValidationBudget int
}

// DefaultLimits matches spec.md §6: {1 MiB, 16 GiB, unbounded, 100}.
func DefaultLimits() Limits {
	return Limits{
		JSONBytes:        1 << 20,
		ImageBytes:       16 << 30,
		ImageDim:         0,
		ValidationBudget: 100,
	}
}
