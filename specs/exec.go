package specs

// Exec binary container layout. See the original exec.hpp and spec §4.7/§6.5.
const (
	DefaultExtension = ".a"

	IntroString  = "ThisIsKarmaExec"
	IntroSize    = 16 // IntroString plus one trailing NUL byte
	HeaderSize   = 512
	CodeSegmentPos = HeaderSize

	ProcessorID Word = 239
)

// Header field byte offsets within the first HeaderSize bytes.
const (
	OffsetIntro       = 0
	OffsetCodeBytes   = OffsetIntro + IntroSize
	OffsetConstBytes  = OffsetCodeBytes + 4
	OffsetEntrypoint  = OffsetConstBytes + 4
	OffsetInitialSP   = OffsetEntrypoint + 4
	OffsetProcessorID = OffsetInitialSP + 4
	MetaInfoEndPos    = OffsetProcessorID + 4
)
