package config

import (
	"time"
)

type (
	StartLineSize struct {
		Default, Maximal int
	}

	HeadersNumber struct {
		Default, Maximal int
	}

	HeadersSpace struct {
		Default, Maximal int
	}
)

type (
	StartLine struct {
		// Size is the buffer the start-line is accumulated in. Default is its initial capacity,
		// Maximal is the longest start-line accepted, CRLF excluded. Longer ones are rejected
		// as StartLineTooLong.
		Size StartLineSize
	}

	Headers struct {
		// Number is responsible for the header collection size.
		// Default value is an initial capacity of the collection.
		// Maximal value is maximum number of fields allowed to be presented.
		Number HeadersNumber
		// MaxFieldSize limits a single field line, including all its obs-fold continuations.
		MaxFieldSize int
		// Space limits the amount of memory occupied by all the field lines of a message,
		// trailers included.
		Space HeadersSpace
	}

	Body struct {
		// MaxSize describes the maximal size of a body, that can be processed. Applies equally
		// to fixed, chunked and close-delimited bodies. In order to disable the setting, use
		// the math.MaxUint64 value.
		MaxSize uint64
		// MaxChunkSize is the largest chunk-size value accepted.
		MaxChunkSize uint64
		// MaxChunkLineLength limits the chunk-size line including chunk extensions.
		MaxChunkLineLength int
		// BufferPrealloc is the initial capacity of the body accumulator if the length isn't
		// known in advance (chunked or close-delimited bodies.)
		BufferPrealloc int
	}

	NET struct {
		// ReadBufferSize is a size of buffer in bytes which will be used to read from
		// the source.
		ReadBufferSize int
		// ReadTimeout is set as a deadline before every read, if the source supports
		// deadlines. If no data was received in this period of time, reading fails.
		ReadTimeout time.Duration
	}
)

// Config holds limits and pre-allocations used by parsers and stream readers.
//
// You must ALWAYS modify defaults (returned via Default()) and NEVER try to initialize the
// config manually, because most likely this will result in ambiguous errors.
type Config struct {
	StartLine StartLine
	Headers   Headers
	Body      Body
	NET       NET
}

// Default returns default config. Those are initially well-balanced, however maximal defaults
// are pretty permitting.
func Default() *Config {
	return &Config{
		StartLine: StartLine{
			Size: StartLineSize{
				Default: 512,
				// RFC 9112 recommends supporting at least 8000 octets. Most web-entities
				// limit it to 4-8kb, so 16kb is pretty much tolerant.
				Maximal: 16 * 1024,
			},
		},
		Headers: Headers{
			Number: HeadersNumber{
				Default: 10,
				Maximal: 100,
			},
			MaxFieldSize: 8 * 1024,
			Space: HeadersSpace{
				Default: 1 * 1024,  // 1kb for headers must be fairly enough in most cases.
				Maximal: 64 * 1024, // However, there also might be extremely long cookies.
			},
		},
		Body: Body{
			MaxSize:            512 * 1024 * 1024, // 512 megabytes
			MaxChunkSize:       16 * 1024 * 1024,
			MaxChunkLineLength: 4 * 1024, // leaves plenty of room for chunk extensions
			BufferPrealloc:     4 * 1024,
		},
		NET: NET{
			ReadBufferSize: 4 * 1024,
			ReadTimeout:    90 * time.Second,
		},
	}
}
