package omf

import (
	"bytes"
	"encoding/json"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"log/slog"

	"github.com/apache/arrow/go/v16/parquet"

	"github.com/gmggroup/omf-go/internal/columnstore"
	"github.com/gmggroup/omf-go/internal/container"
	"github.com/gmggroup/omf-go/internal/imageutil"
	"github.com/gmggroup/omf-go/internal/model"
	"github.com/gmggroup/omf-go/internal/omferr"
	"github.com/gmggroup/omf-go/internal/validate"
)

// defaultCompression is spec.md §6's Writer default (level 6).
const defaultCompression = 6

// WriterConfig configures a Writer, following the teacher's plain-struct
// idiom (internal/pqutil/transform.go's TransformConfig) rather than
// functional options.
type WriterConfig struct {
	// Sink receives the finished ZIP archive. It need not be seekable.
	Sink io.Writer
	// Compression is the gzip level (0-9) used for every Parquet member
	// and the index; out-of-range values are clamped. Defaults to 6.
	Compression int
	// ValidationBudget bounds the problems Writer.Finish's Validator pass
	// records. Zero means DefaultLimits().ValidationBudget.
	ValidationBudget int
	// Logger receives Debug-level traces for image members and Finish; defaults to
	// slog.Default() when nil.
	Logger *slog.Logger
}

// Writer streams arrays one at a time into a fresh container and, on
// Finish, validates the accumulated write-side checks before sealing the
// archive (spec.md §4.6).
type Writer struct {
	builder          *container.Builder
	compression      int
	validationBudget int
	logger           *slog.Logger
	finished         bool
}

// NewWriter wraps a random-access sink with a fresh, empty container.
func NewWriter(config *WriterConfig) *Writer {
	budget := config.ValidationBudget
	if budget == 0 {
		budget = DefaultLimits().ValidationBudget
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	compression := config.Compression
	if compression == 0 {
		compression = defaultCompression
	}
	return &Writer{
		builder:          container.NewBuilder(config.Sink),
		compression:      columnstore.ClampCompression(compression),
		validationBudget: budget,
		logger:           logger,
	}
}

// SetCompression clamps level to 0..=9 and uses it for every member written
// from this point on (spec.md §4.6).
func (w *Writer) SetCompression(level int) {
	w.compression = columnstore.ClampCompression(level)
}

func (w *Writer) props() *parquet.WriterProperties {
	return columnstore.WriterProps(w.compression)
}

func (w *Writer) checkNotFinished() error {
	if w.finished {
		return omferr.InvalidCallErr("Writer already finished")
	}
	return nil
}

func (w *Writer) member() (io.Writer, string, error) {
	return w.builder.Member(container.KindParquet)
}

// Scalar streams a Scalar array.
func (w *Writer) Scalar(src columnstore.Source[float64], width columnstore.Width) (model.Array[float64], error) {
	if err := w.checkNotFinished(); err != nil {
		return model.Array[float64]{}, err
	}
	mw, name, err := w.member()
	if err != nil {
		return model.Array[float64]{}, err
	}
	arr, err := columnstore.WriteScalar(mw, w.props(), src, width)
	arr.Filename = name
	return arr, err
}

// Vertex streams a Vertex array.
func (w *Writer) Vertex(src columnstore.Source[model.Vertex], width columnstore.Width) (model.Array[model.Vertex], error) {
	if err := w.checkNotFinished(); err != nil {
		return model.Array[model.Vertex]{}, err
	}
	mw, name, err := w.member()
	if err != nil {
		return model.Array[model.Vertex]{}, err
	}
	arr, err := columnstore.WriteVertex(mw, w.props(), src, width)
	arr.Filename = name
	return arr, err
}

// Texcoord streams a Texcoord array.
func (w *Writer) Texcoord(src columnstore.Source[model.Texcoord], width columnstore.Width) (model.Array[model.Texcoord], error) {
	if err := w.checkNotFinished(); err != nil {
		return model.Array[model.Texcoord]{}, err
	}
	mw, name, err := w.member()
	if err != nil {
		return model.Array[model.Texcoord]{}, err
	}
	arr, err := columnstore.WriteTexcoord(mw, w.props(), src, width)
	arr.Filename = name
	return arr, err
}

// Segment streams a LineSet's Segment index array.
func (w *Writer) Segment(src columnstore.Source[model.Segment]) (model.Array[model.Segment], error) {
	if err := w.checkNotFinished(); err != nil {
		return model.Array[model.Segment]{}, err
	}
	mw, name, err := w.member()
	if err != nil {
		return model.Array[model.Segment]{}, err
	}
	arr, err := columnstore.WriteSegment(mw, w.props(), src)
	arr.Filename = name
	return arr, err
}

// Triangle streams a Surface's Triangle index array.
func (w *Writer) Triangle(src columnstore.Source[model.Triangle]) (model.Array[model.Triangle], error) {
	if err := w.checkNotFinished(); err != nil {
		return model.Array[model.Triangle]{}, err
	}
	mw, name, err := w.member()
	if err != nil {
		return model.Array[model.Triangle]{}, err
	}
	arr, err := columnstore.WriteTriangle(mw, w.props(), src)
	arr.Filename = name
	return arr, err
}

// Name streams a Name array (element names, category names).
func (w *Writer) Name(src columnstore.Source[string]) (model.Array[string], error) {
	if err := w.checkNotFinished(); err != nil {
		return model.Array[string]{}, err
	}
	mw, name, err := w.member()
	if err != nil {
		return model.Array[string]{}, err
	}
	arr, err := columnstore.WriteName(mw, w.props(), src)
	arr.Filename = name
	return arr, err
}

// Text streams a Text attribute array.
func (w *Writer) Text(src columnstore.Source[*string]) (model.Array[string], error) {
	if err := w.checkNotFinished(); err != nil {
		return model.Array[string]{}, err
	}
	mw, name, err := w.member()
	if err != nil {
		return model.Array[string]{}, err
	}
	arr, err := columnstore.WriteText(mw, w.props(), src)
	arr.Filename = name
	return arr, err
}

// Boolean streams a Boolean attribute array.
func (w *Writer) Boolean(src columnstore.Source[model.Trivalent]) (model.Array[model.Trivalent], error) {
	if err := w.checkNotFinished(); err != nil {
		return model.Array[model.Trivalent]{}, err
	}
	mw, name, err := w.member()
	if err != nil {
		return model.Array[model.Trivalent]{}, err
	}
	arr, err := columnstore.WriteBoolean(mw, w.props(), src)
	arr.Filename = name
	return arr, err
}

// Color streams a Color attribute array.
func (w *Writer) Color(src columnstore.Source[*model.Color]) (model.Array[model.Color], error) {
	if err := w.checkNotFinished(); err != nil {
		return model.Array[model.Color]{}, err
	}
	mw, name, err := w.member()
	if err != nil {
		return model.Array[model.Color]{}, err
	}
	arr, err := columnstore.WriteColor(mw, w.props(), src)
	arr.Filename = name
	return arr, err
}

// Gradient streams a colormap's Gradient array.
func (w *Writer) Gradient(src columnstore.Source[model.Color]) (model.Array[model.Color], error) {
	if err := w.checkNotFinished(); err != nil {
		return model.Array[model.Color]{}, err
	}
	mw, name, err := w.member()
	if err != nil {
		return model.Array[model.Color]{}, err
	}
	arr, err := columnstore.WriteGradient(mw, w.props(), src)
	arr.Filename = name
	return arr, err
}

// Vector streams a Vector attribute array. dims is 2 or 3.
func (w *Writer) Vector(src columnstore.Source[*[]float64], dims int, width columnstore.Width) (model.Array[[3]float64], error) {
	if err := w.checkNotFinished(); err != nil {
		return model.Array[[3]float64]{}, err
	}
	mw, name, err := w.member()
	if err != nil {
		return model.Array[[3]float64]{}, err
	}
	arr, err := columnstore.WriteVector(mw, w.props(), src, dims, width)
	arr.Filename = name
	return arr, err
}

// Index streams a category Index array.
func (w *Writer) Index(src columnstore.Source[*uint32]) (model.Array[uint32], error) {
	if err := w.checkNotFinished(); err != nil {
		return model.Array[uint32]{}, err
	}
	mw, name, err := w.member()
	if err != nil {
		return model.Array[uint32]{}, err
	}
	arr, err := columnstore.WriteIndex(mw, w.props(), src)
	arr.Filename = name
	return arr, err
}

// Number streams a Number attribute array.
func (w *Writer) Number(src columnstore.Source[*columnstore.NumberValue], t model.NumberType) (model.Array[columnstore.NumberValue], error) {
	if err := w.checkNotFinished(); err != nil {
		return model.Array[columnstore.NumberValue]{}, err
	}
	mw, name, err := w.member()
	if err != nil {
		return model.Array[columnstore.NumberValue]{}, err
	}
	arr, err := columnstore.WriteNumber(mw, w.props(), src, t)
	arr.Filename = name
	return arr, err
}

// Boundary streams a DiscreteColormap boundary array.
func (w *Writer) Boundary(src columnstore.Source[model.Boundary[*columnstore.NumberValue]], t model.NumberType) (model.Array[model.Boundary[columnstore.NumberValue]], error) {
	if err := w.checkNotFinished(); err != nil {
		return model.Array[model.Boundary[columnstore.NumberValue]]{}, err
	}
	mw, name, err := w.member()
	if err != nil {
		return model.Array[model.Boundary[columnstore.NumberValue]]{}, err
	}
	arr, err := columnstore.WriteBoundary(mw, w.props(), src, t)
	arr.Filename = name
	return arr, err
}

// RegularSubblock streams a block model's regular sub-block rows.
func (w *Writer) RegularSubblock(src columnstore.Source[model.RegularSubblockRow], mode *model.SubblockMode, parentCount, subblockCount [3]uint32) (model.Array[model.RegularSubblockRow], error) {
	if err := w.checkNotFinished(); err != nil {
		return model.Array[model.RegularSubblockRow]{}, err
	}
	mw, name, err := w.member()
	if err != nil {
		return model.Array[model.RegularSubblockRow]{}, err
	}
	arr, err := columnstore.WriteRegularSubblock(mw, w.props(), src, mode, parentCount, subblockCount)
	arr.Filename = name
	return arr, err
}

// FreeformSubblock streams a block model's free-form sub-block rows.
func (w *Writer) FreeformSubblock(src columnstore.Source[model.FreeformSubblockRow], parentCount [3]uint32) (model.Array[model.FreeformSubblockRow], error) {
	if err := w.checkNotFinished(); err != nil {
		return model.Array[model.FreeformSubblockRow]{}, err
	}
	mw, name, err := w.member()
	if err != nil {
		return model.Array[model.FreeformSubblockRow]{}, err
	}
	arr, err := columnstore.WriteFreeformSubblock(mw, w.props(), src, parentCount)
	arr.Filename = name
	return arr, err
}

// ImageBytes writes raw PNG or JPEG bytes directly after verifying the
// magic number (spec.md §4.6 "image_bytes writes PNG or JPEG directly
// after verifying the magic number").
func (w *Writer) ImageBytes(data []byte) (model.Array[[]byte], error) {
	if err := w.checkNotFinished(); err != nil {
		return model.Array[[]byte]{}, err
	}
	format := imageutil.Sniff(data)
	var kind container.MemberKind
	switch format {
	case imageutil.FormatPNG:
		kind = container.KindPNG
	case imageutil.FormatJPEG:
		kind = container.KindJPEG
	default:
		return model.Array[[]byte]{}, omferr.New(omferr.NotImageData)
	}
	mw, name, err := w.builder.Member(kind)
	if err != nil {
		return model.Array[[]byte]{}, err
	}
	if _, err := mw.Write(data); err != nil {
		return model.Array[[]byte]{}, omferr.IoErr(err)
	}
	w.logger.Debug("wrote image member", "name", name, "bytes", len(data))
	return model.NewArray[[]byte](name, uint64(len(data))), nil
}

// ImagePNG re-encodes img as PNG and writes it (spec.md §4.6 "image_png ...
// re-encode via the image codec").
func (w *Writer) ImagePNG(img image.Image) (model.Array[[]byte], error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return model.Array[[]byte]{}, omferr.Wrap(omferr.ImageError, err)
	}
	return w.ImageBytes(buf.Bytes())
}

// ImageJPEG re-encodes img as JPEG at the given quality (1-100) and writes
// it.
func (w *Writer) ImageJPEG(img image.Image, quality int) (model.Array[[]byte], error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return model.Array[[]byte]{}, omferr.Wrap(omferr.ImageError, err)
	}
	return w.ImageBytes(buf.Bytes())
}

// Finish runs the Validator over project (which consumes the write-side
// checks already attached to every Array handle returned above), writes
// index.json.gz through a gzip encoder at the current compression level,
// stamps the archive comment with this library's format version, and
// returns the warnings (spec.md §4.6). finish must be the last Writer call
// (spec.md §5 "Ordering guarantees"); a second call fails with InvalidCall.
func (w *Writer) Finish(project *model.Project) (validate.Problems, error) {
	if err := w.checkNotFinished(); err != nil {
		return nil, err
	}
	w.finished = true

	filenames := make(map[string]bool, len(w.builder.Filenames()))
	for _, name := range w.builder.Filenames() {
		filenames[name] = true
	}
	problems := validate.Project(project, filenames, w.validationBudget)
	if problems.HasErrors() {
		return nil, omferr.ValidationFailedErr(problems)
	}

	data, err := json.Marshal(project)
	if err != nil {
		return nil, omferr.Wrap(omferr.SerializationFailed, err)
	}
	if err := w.builder.WriteIndex(data, w.compression); err != nil {
		return nil, err
	}
	if err := w.builder.Finish(currentVersion()); err != nil {
		return nil, err
	}
	w.logger.Debug("finished container", "members", len(w.builder.Filenames()), "warnings", len(problems))
	return problems, nil
}

// Cancel marks the Writer unusable without writing the index or archive
// comment, discarding the in-progress container (spec.md §5
// "Cancellation"). Since Builder wraps a generic io.Writer rather than an
// owned file, removing any partial output on disk remains the caller's
// responsibility.
func (w *Writer) Cancel() {
	w.finished = true
}
