package omf

import (
	"encoding/json"
	"log/slog"

	"github.com/apache/arrow/go/v16/parquet"

	"github.com/gmggroup/omf-go/internal/columnstore"
	"github.com/gmggroup/omf-go/internal/container"
	"github.com/gmggroup/omf-go/internal/imageutil"
	"github.com/gmggroup/omf-go/internal/model"
	"github.com/gmggroup/omf-go/internal/omferr"
	"github.com/gmggroup/omf-go/internal/storage"
	"github.com/gmggroup/omf-go/internal/validate"
)

// ReaderConfig configures a Reader, following the teacher's plain-struct
// idiom (internal/geoparquet/writer.go's WriterConfig) rather than
// functional options.
type ReaderConfig struct {
	// Source is the random-access byte source backing the container.
	Source storage.ReaderAtSeeker
	// Size is the total byte length of Source.
	Size int64
	// Limits overrides the default safety bounds; the zero value means
	// DefaultLimits().
	Limits Limits
	// Logger receives a Debug-level trace when Project parses the index; defaults to
	// slog.Default() when nil.
	Logger *slog.Logger
}

// Reader opens an OMF container, validates its version stamp, and on
// Project parses and validates the index exactly once (spec.md §4.5).
type Reader struct {
	archive     *container.Archive
	limits      Limits
	logger      *slog.Logger
	projectRead bool
}

// NewReader opens the container and checks its version stamp. It does not
// read the index.
func NewReader(config *ReaderConfig) (*Reader, error) {
	archive, err := container.Open(config.Source, config.Size)
	if err != nil {
		return nil, err
	}
	if err := checkVersion(archive.Version()); err != nil {
		return nil, err
	}
	limits := config.Limits
	if limits == (Limits{}) {
		limits = DefaultLimits()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{archive: archive, limits: limits, logger: logger}, nil
}

// Limits exposes the configured safety bounds (spec.md §4.5 "limits()").
func (r *Reader) Limits() Limits { return r.limits }

// Project reads index.json.gz through a byte-limited gzip stream, parses
// it, and runs the Validator with access to the container's member list
// (spec.md §4.5). It is callable only once; a second call fails with
// InvalidCall (spec.md §5 "Shared-resource policy").
func (r *Reader) Project() (model.Project, validate.Problems, error) {
	if r.projectRead {
		return model.Project{}, nil, omferr.InvalidCallErr("Project already read from this Reader")
	}
	r.projectRead = true

	data, err := r.archive.ReadIndex(r.limits.JSONBytes)
	if err != nil {
		return model.Project{}, nil, err
	}

	if err := validate.CheckStructure(data); err != nil {
		return model.Project{}, nil, err
	}

	var project model.Project
	if err := json.Unmarshal(data, &project); err != nil {
		return model.Project{}, nil, omferr.Wrap(omferr.DeserializationFailed, err)
	}

	filenames := make(map[string]bool, len(r.archive.Filenames()))
	for _, name := range r.archive.Filenames() {
		filenames[name] = true
	}
	problems := validate.Project(&project, filenames, r.limits.ValidationBudget)
	if problems.HasErrors() {
		return model.Project{}, nil, omferr.ValidationFailedErr(problems)
	}
	r.logger.Debug("project parsed", "elements", len(project.Elements), "warnings", len(problems))
	return project, problems, nil
}

// open returns a random-access view of one container member ready to hand
// to a Parquet reader.
func (r *Reader) open(filename string) (parquet.ReaderAtSeeker, error) {
	sr, err := r.archive.Open(filename)
	if err != nil {
		return nil, err
	}
	return sr, nil
}

// Scalar opens a Scalar array for reading (spec.md §4.2).
func (r *Reader) Scalar(arr model.Array[float64]) (*columnstore.ScalarSink, error) {
	f, err := r.open(arr.Filename)
	if err != nil {
		return nil, err
	}
	return columnstore.ReadScalar(f, arr.Constraint.RequirePositive)
}

// Vertex opens a Vertex array for reading.
func (r *Reader) Vertex(arr model.Array[model.Vertex]) (*columnstore.VertexSink, error) {
	f, err := r.open(arr.Filename)
	if err != nil {
		return nil, err
	}
	return columnstore.ReadVertex(f)
}

// Texcoord opens a Texcoord array for reading.
func (r *Reader) Texcoord(arr model.Array[model.Texcoord]) (*columnstore.TexcoordSink, error) {
	f, err := r.open(arr.Filename)
	if err != nil {
		return nil, err
	}
	return columnstore.ReadTexcoord(f)
}

// Segment opens a Segment (line) index array, checked against arr's
// recorded vertex-count constraint.
func (r *Reader) Segment(arr model.Array[model.Segment]) (*columnstore.SegmentSink, error) {
	f, err := r.open(arr.Filename)
	if err != nil {
		return nil, err
	}
	return columnstore.ReadSegment(f, arr.Constraint.MaxIndex)
}

// Triangle opens a Triangle (surface) index array.
func (r *Reader) Triangle(arr model.Array[model.Triangle]) (*columnstore.TriangleSink, error) {
	f, err := r.open(arr.Filename)
	if err != nil {
		return nil, err
	}
	return columnstore.ReadTriangle(f, arr.Constraint.MaxIndex)
}

// Name opens a Name array (category names, element name lists).
func (r *Reader) Name(arr model.Array[string]) (*columnstore.NameSink, error) {
	f, err := r.open(arr.Filename)
	if err != nil {
		return nil, err
	}
	return columnstore.ReadName(f)
}

// Text opens a Text attribute array.
func (r *Reader) Text(arr model.Array[string]) (*columnstore.TextSink, error) {
	f, err := r.open(arr.Filename)
	if err != nil {
		return nil, err
	}
	return columnstore.ReadText(f)
}

// Boolean opens a Boolean attribute array.
func (r *Reader) Boolean(arr model.Array[model.Trivalent]) (*columnstore.BooleanSink, error) {
	f, err := r.open(arr.Filename)
	if err != nil {
		return nil, err
	}
	return columnstore.ReadBoolean(f)
}

// Color opens a Color attribute array.
func (r *Reader) Color(arr model.Array[model.Color]) (*columnstore.ColorSink, error) {
	f, err := r.open(arr.Filename)
	if err != nil {
		return nil, err
	}
	return columnstore.ReadColor(f)
}

// Gradient opens a colormap's gradient array.
func (r *Reader) Gradient(arr model.Array[model.Color]) (*columnstore.GradientSink, error) {
	f, err := r.open(arr.Filename)
	if err != nil {
		return nil, err
	}
	return columnstore.ReadGradient(f)
}

// Vector opens a Vector attribute array, lifting stored 2D vectors to 3D
// with z=0 on read.
func (r *Reader) Vector(arr model.Array[[3]float64]) (*columnstore.VectorSink, error) {
	f, err := r.open(arr.Filename)
	if err != nil {
		return nil, err
	}
	return columnstore.ReadVector(f)
}

// Index opens a category Index array, checked against the category's name
// count.
func (r *Reader) Index(arr model.Array[uint32]) (*columnstore.IndexSink, error) {
	f, err := r.open(arr.Filename)
	if err != nil {
		return nil, err
	}
	return columnstore.ReadIndex(f, arr.Constraint.NameCount)
}

// Number opens a Number attribute array.
func (r *Reader) Number(arr model.Array[columnstore.NumberValue]) (*columnstore.NumberSink, error) {
	f, err := r.open(arr.Filename)
	if err != nil {
		return nil, err
	}
	return columnstore.ReadNumber(f)
}

// Boundary opens a DiscreteColormap boundary array.
func (r *Reader) Boundary(arr model.Array[model.Boundary[columnstore.NumberValue]]) (*columnstore.BoundarySink, error) {
	f, err := r.open(arr.Filename)
	if err != nil {
		return nil, err
	}
	return columnstore.ReadBoundary(f)
}

// RegularSubblock opens a block model's regular sub-block rows, checked
// against the mode and counts the Validator attached to arr's Constraint.
func (r *Reader) RegularSubblock(arr model.Array[model.RegularSubblockRow]) (*columnstore.RegularSubblockSink, error) {
	f, err := r.open(arr.Filename)
	if err != nil {
		return nil, err
	}
	var parentCount, subblockCount [3]uint32
	if arr.Constraint.ParentCount != nil {
		parentCount = *arr.Constraint.ParentCount
	}
	if arr.Constraint.SubblockCount != nil {
		subblockCount = *arr.Constraint.SubblockCount
	}
	return columnstore.ReadRegularSubblock(f, arr.Constraint.SubblockMode, parentCount, subblockCount)
}

// FreeformSubblock opens a block model's free-form sub-block rows.
func (r *Reader) FreeformSubblock(arr model.Array[model.FreeformSubblockRow]) (*columnstore.FreeformSubblockSink, error) {
	f, err := r.open(arr.Filename)
	if err != nil {
		return nil, err
	}
	var parentCount [3]uint32
	if arr.Constraint.ParentCount != nil {
		parentCount = *arr.Constraint.ParentCount
	}
	return columnstore.ReadFreeformSubblock(f, parentCount)
}

// ImageBytes reads an image member's raw bytes, enforcing Limits.ImageBytes
// on the raw length and identifying its format by magic number (spec.md §4.5
// "Raw byte access is also exposed for callers that want to pass the stream
// through unchanged").
func (r *Reader) ImageBytes(arr model.Array[[]byte]) ([]byte, imageutil.Format, error) {
	data, err := r.archive.ReadAll(arr.Filename)
	if err != nil {
		return nil, imageutil.FormatUnknown, err
	}
	format, err := imageutil.CheckBytes(data, r.limits.ImageBytes)
	if err != nil {
		return nil, format, err
	}
	return data, format, nil
}

// ImageDimensions decodes only an image member's header, enforcing
// Limits.ImageDim, without allocating the full pixel buffer.
func (r *Reader) ImageDimensions(arr model.Array[[]byte]) (width, height int, err error) {
	data, err := r.archive.ReadAll(arr.Filename)
	if err != nil {
		return 0, 0, err
	}
	return imageutil.CheckDimensions(data, r.limits.ImageDim)
}
