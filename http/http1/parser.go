// Package http1 implements the HTTP/1.1 wire format: a streaming, resumable parser and
// a deterministic serializer.
package http1

import (
	"bytes"
	"math"

	"github.com/dreamsmith-workshop/multiverse/config"
	"github.com/dreamsmith-workshop/multiverse/http"
	"github.com/dreamsmith-workshop/multiverse/http/headers"
	"github.com/dreamsmith-workshop/multiverse/http/method"
	"github.com/dreamsmith-workshop/multiverse/http/proto"
	"github.com/dreamsmith-workshop/multiverse/http/status"
	"github.com/dreamsmith-workshop/multiverse/http/target"
	"github.com/dreamsmith-workshop/multiverse/internal/buffer"
	"github.com/dreamsmith-workshop/multiverse/internal/grammar"
	"github.com/dreamsmith-workshop/multiverse/internal/hexconv"
	"github.com/indigo-web/utils/uf"
)

type parserState uint8

const (
	eStartLine parserState = iota
	eHeaders
	eBodyFixed
	eBodyUntilClose
	eChunkSize
	eChunkData
	eChunkDataCR
	eChunkDataLF
	eTrailer
	eComplete
	eFailed
)

// Parser consumes a byte stream and produces messages of type M, which is either *http.Request
// or *http.Response. A parser is bound to a single stream and must not be used concurrently.
type Parser[M http.Message] struct {
	cfg      *config.Config
	assemble func(*Parser[M]) M
	response bool
	state    parserState
	err      *Error
	// base is the absolute stream offset of the data passed into the current Parse call,
	// and fed is its length.
	base uint64
	fed  int

	startLine buffer.Buffer
	fieldLine buffer.Buffer
	chunkLine buffer.Buffer

	method        method.Method
	target        target.Target
	version       proto.Version
	code          status.Code
	reason        string
	requestMethod method.Method

	headers      *headers.Headers
	trailer      *headers.Headers
	inTrailer    bool
	hasPending   bool
	pendingName  string
	pendingValue []byte
	space        int

	bodyKind  http.BodyKind
	body      []byte
	bodySize  uint64
	remaining uint64
	chunks    [][]byte
	chunk     []byte
}

// NewRequestParser returns a parser of requests. The config must not be modified afterwards.
func NewRequestParser(cfg *config.Config) *Parser[*http.Request] {
	return newParser(cfg, false, assembleRequest)
}

// NewResponseParser returns a parser of responses. The config must not be modified afterwards.
func NewResponseParser(cfg *config.Config) *Parser[*http.Response] {
	return newParser(cfg, true, assembleResponse)
}

func newParser[M http.Message](cfg *config.Config, response bool, assemble func(*Parser[M]) M) *Parser[M] {
	fieldLimit := cfg.Headers.MaxFieldSize + 1

	p := &Parser[M]{
		cfg:       cfg,
		assemble:  assemble,
		response:  response,
		startLine: buffer.New(cfg.StartLine.Size.Default, cfg.StartLine.Size.Maximal+1),
		fieldLine: buffer.New(min(cfg.Headers.Space.Default, fieldLimit), fieldLimit),
		chunkLine: buffer.New(16, cfg.Body.MaxChunkLineLength+1),
	}
	p.reset()

	return p
}

func assembleRequest(p *Parser[*http.Request]) *http.Request {
	return http.AssembleRequest(p.method, p.target, p.version, p.headers, p.assembleBody())
}

func assembleResponse(p *Parser[*http.Response]) *http.Response {
	return http.AssembleResponse(p.version, p.code, p.reason, p.headers, p.assembleBody())
}

// SetRequestMethod tells a response parser which method the next response answers. Responses
// to HEAD carry no content, and neither do successful responses to CONNECT. It's reset after
// every message. Request parsers ignore it.
func (p *Parser[M]) SetRequestMethod(m method.Method) {
	p.requestMethod = m
}

// Parse feeds the next piece of the stream. A zero message along with nil error means more
// input is required. When a message is complete, the bytes following it are returned as
// extra and must be fed again to parse the next pipelined message. Every failure is terminal:
// all the subsequent calls return the same error.
func (p *Parser[M]) Parse(data []byte) (msg M, extra []byte, err error) {
	if p.state == eFailed {
		return msg, nil, p.err
	}

	p.fed = len(data)
	done, extra, perr := p.parse(data)
	if perr != nil {
		p.state, p.err = eFailed, perr
		return msg, nil, perr
	}

	p.base += uint64(len(data) - len(extra))
	if !done {
		return msg, nil, nil
	}

	msg = p.assemble(p)
	// interim responses precede the final response to the same request (RFC 9110, 15.2),
	// except for 101 which ends HTTP/1.1 on the connection.
	interim := p.response && p.code.IsInformational() && p.code != status.SwitchingProtocols
	requestMethod := p.requestMethod
	p.reset()

	if interim {
		p.requestMethod = requestMethod
	}

	return msg, extra, nil
}

// Finish signals the end of the stream. Close-delimited responses are complete at this point.
// A zero message along with nil error is returned if the stream ended between messages.
func (p *Parser[M]) Finish() (msg M, err error) {
	switch p.state {
	case eFailed:
		return msg, p.err
	case eBodyUntilClose:
		msg = p.assemble(p)
		p.reset()
		return msg, nil
	case eStartLine:
		if len(bytes.TrimRight(p.startLine.Preview(), "\r")) == 0 {
			p.reset()
			return msg, nil
		}

		return msg, p.failEOF(UnexpectedEOF)
	case eHeaders:
		return msg, p.failEOF(UnexpectedEOF)
	default:
		return msg, p.failEOF(TruncatedBody)
	}
}

func (p *Parser[M]) parse(data []byte) (done bool, rest []byte, err *Error) {
	switch p.state {
	case eStartLine:
		goto startLine
	case eHeaders, eTrailer:
		goto fieldLine
	case eBodyFixed:
		goto bodyFixed
	case eBodyUntilClose:
		goto bodyUntilClose
	case eChunkSize:
		goto chunkSize
	case eChunkData:
		goto chunkData
	case eChunkDataCR:
		goto chunkDataCR
	case eChunkDataLF:
		goto chunkDataLF
	default:
		panic("unreachable code")
	}

startLine:
	{
		line, tail, st := readLine(&p.startLine, p.cfg.StartLine.Size.Maximal, data)
		switch st {
		case lineIncomplete:
			p.state = eStartLine
			return false, nil, nil
		case lineTooLong:
			return false, nil, p.fail(StartLineTooLong, tail)
		case lineBareCR:
			return false, nil, p.fail(MalformedStartLine, tail)
		}

		data = tail

		if len(line) == 0 {
			// RFC 9112, 2.2: empty lines preceding the start-line are ignored.
			p.startLine.Clear()
			goto startLine
		}

		if p.response {
			err = p.parseStatusLine(line, data)
		} else {
			err = p.parseRequestLine(line, data)
		}

		p.startLine.Clear()
		if err != nil {
			return false, nil, err
		}

		goto fieldLine
	}

fieldLine:
	{
		line, tail, st := readLine(&p.fieldLine, p.cfg.Headers.MaxFieldSize, data)
		switch st {
		case lineIncomplete:
			p.state = eHeaders
			if p.inTrailer {
				p.state = eTrailer
			}

			return false, nil, nil
		case lineTooLong:
			return false, nil, p.fail(HeaderTooLarge, tail)
		case lineBareCR:
			return false, nil, p.fail(MalformedHeader, tail)
		}

		data = tail

		if p.space += len(line) + len("\r\n"); p.space > p.cfg.Headers.Space.Maximal {
			return false, nil, p.fail(HeaderTooLarge, data)
		}

		switch {
		case len(line) == 0:
			err = p.flushField(data)
		case grammar.IsWhitespace(line[0]):
			err = p.foldField(line, data)
		default:
			if err = p.flushField(data); err == nil {
				err = p.startField(line, data)
			}
		}

		p.fieldLine.Clear()
		if err != nil {
			return false, nil, err
		}

		if len(line) > 0 {
			goto fieldLine
		}

		if p.inTrailer {
			return true, data, nil
		}

		var next parserState
		if next, err = p.frame(data); err != nil {
			return false, nil, err
		}

		switch next {
		case eBodyFixed:
			goto bodyFixed
		case eBodyUntilClose:
			goto bodyUntilClose
		case eChunkSize:
			goto chunkSize
		default:
			return true, data, nil
		}
	}

bodyFixed:
	{
		n := min(p.remaining, uint64(len(data)))
		p.body = append(p.body, data[:n]...)
		p.remaining -= n
		data = data[n:]

		if p.remaining > 0 {
			p.state = eBodyFixed
			return false, nil, nil
		}

		return true, data, nil
	}

bodyUntilClose:
	if uint64(len(p.body))+uint64(len(data)) > p.cfg.Body.MaxSize {
		return false, nil, p.fail(BodyTooLarge, data)
	}

	p.body = append(p.body, data...)
	p.state = eBodyUntilClose
	return false, nil, nil

chunkSize:
	{
		line, tail, st := readLine(&p.chunkLine, p.cfg.Body.MaxChunkLineLength, data)
		switch st {
		case lineIncomplete:
			p.state = eChunkSize
			return false, nil, nil
		case lineTooLong, lineBareCR:
			return false, nil, p.fail(MalformedChunk, tail)
		}

		data = tail

		var size uint64
		size, err = p.parseChunkSize(line, data)
		p.chunkLine.Clear()
		if err != nil {
			return false, nil, err
		}

		if size == 0 {
			p.inTrailer = true
			goto fieldLine
		}

		if p.bodySize += size; p.bodySize > p.cfg.Body.MaxSize {
			return false, nil, p.fail(BodyTooLarge, data)
		}

		p.remaining = size
		p.chunk = make([]byte, 0, min(size, uint64(p.cfg.Body.BufferPrealloc)))
		goto chunkData
	}

chunkData:
	{
		n := min(p.remaining, uint64(len(data)))
		p.chunk = append(p.chunk, data[:n]...)
		p.remaining -= n
		data = data[n:]

		if p.remaining > 0 {
			p.state = eChunkData
			return false, nil, nil
		}

		p.chunks = append(p.chunks, p.chunk)
		p.chunk = nil
		goto chunkDataCR
	}

chunkDataCR:
	if len(data) == 0 {
		p.state = eChunkDataCR
		return false, nil, nil
	}

	switch data[0] {
	case '\r':
		data = data[1:]
		goto chunkDataLF
	case '\n':
		data = data[1:]
		goto chunkSize
	default:
		return false, nil, p.fail(MalformedChunk, data)
	}

chunkDataLF:
	if len(data) == 0 {
		p.state = eChunkDataLF
		return false, nil, nil
	}

	if data[0] != '\n' {
		return false, nil, p.fail(MalformedChunk, data)
	}

	data = data[1:]
	goto chunkSize
}

func (p *Parser[M]) parseRequestLine(line, rest []byte) *Error {
	sp := bytes.IndexByte(line, ' ')
	if sp <= 0 {
		return p.fail(MalformedStartLine, rest)
	}

	m, ok := method.Parse(uf.B2S(line[:sp]))
	if !ok {
		return p.fail(MalformedStartLine, rest)
	}

	line = line[sp+1:]
	sp = bytes.IndexByte(line, ' ')
	if sp <= 0 {
		return p.fail(MalformedStartLine, rest)
	}

	version, ok := proto.FromBytes(line[sp+1:])
	switch {
	case !ok:
		return p.fail(MalformedStartLine, rest)
	case version.Major != 1:
		return p.fail(UnsupportedVersion, rest)
	}

	t, err := target.Parse(line[:sp], target.ExpectedForm(m))
	if err != nil {
		return p.fail(InvalidTarget, rest)
	}

	p.method, p.target, p.version = m, t, version
	return nil
}

func (p *Parser[M]) parseStatusLine(line, rest []byte) *Error {
	const versionLength = len("HTTP/x.x")

	if len(line) < versionLength+len(" 200") || line[versionLength] != ' ' {
		return p.fail(MalformedStartLine, rest)
	}

	version, ok := proto.FromBytes(line[:versionLength])
	switch {
	case !ok:
		return p.fail(MalformedStartLine, rest)
	case version.Major != 1:
		return p.fail(UnsupportedVersion, rest)
	}

	var code status.Code
	for _, c := range line[versionLength+1 : versionLength+4] {
		if !grammar.IsDigit(c) {
			return p.fail(MalformedStartLine, rest)
		}

		code = code*10 + status.Code(c-'0')
	}

	if !code.Valid() {
		return p.fail(MalformedStartLine, rest)
	}

	reason := line[versionLength+4:]
	if len(reason) > 0 {
		// the space separating the reason phrase is mandatory, but tolerated if absent along
		// with the phrase itself.
		if reason[0] != ' ' || !grammar.IsReason(uf.B2S(reason[1:])) {
			return p.fail(MalformedStartLine, rest)
		}

		reason = reason[1:]
	}

	p.version, p.code, p.reason = version, code, string(reason)
	return nil
}

func (p *Parser[M]) startField(line, rest []byte) *Error {
	colon := bytes.IndexByte(line, ':')
	if colon <= 0 {
		return p.fail(MalformedHeader, rest)
	}

	// no whitespace is allowed between the name and the colon (RFC 9112, 5.1), which is
	// guaranteed by the token check.
	name := line[:colon]
	if !grammar.IsTokenString(uf.B2S(name)) {
		return p.fail(MalformedHeader, rest)
	}

	value := grammar.TrimOWS(line[colon+1:])
	if !grammar.IsFieldValue(uf.B2S(value)) {
		return p.fail(MalformedHeader, rest)
	}

	p.pendingName = string(name)
	p.pendingValue = append(p.pendingValue[:0], value...)
	p.hasPending = true

	return nil
}

// foldField merges an obs-fold continuation line into the pending field, replacing the fold
// with a single space.
func (p *Parser[M]) foldField(line, rest []byte) *Error {
	if !p.hasPending {
		return p.fail(MalformedHeaderFold, rest)
	}

	value := grammar.TrimOWS(line)
	if !grammar.IsFieldValue(uf.B2S(value)) {
		return p.fail(MalformedHeader, rest)
	}

	if len(p.pendingName)+len(": ")+len(p.pendingValue)+1+len(value) > p.cfg.Headers.MaxFieldSize {
		return p.fail(HeaderTooLarge, rest)
	}

	p.pendingValue = append(append(p.pendingValue, ' '), value...)
	return nil
}

func (p *Parser[M]) flushField(rest []byte) *Error {
	if !p.hasPending {
		return nil
	}

	p.hasPending = false
	fields := p.headers
	if p.inTrailer {
		fields = p.trailer
	}

	if fields.Len() >= p.cfg.Headers.Number.Maximal {
		return p.fail(TooManyHeaders, rest)
	}

	if err := fields.Add(p.pendingName, string(p.pendingValue)); err != nil {
		return p.fail(MalformedHeader, rest)
	}

	return nil
}

// frame decides how the body is delimited (RFC 9112, 6.3). Messages having both Content-Length
// and Transfer-Encoding are rejected rather than guessed about.
func (p *Parser[M]) frame(rest []byte) (parserState, *Error) {
	hasTE := p.headers.Has("Transfer-Encoding")
	contentLengths := p.headers.Values("Content-Length")

	if (hasTE && len(contentLengths) > 0) || len(contentLengths) > 1 {
		return eFailed, p.fail(AmbiguousFraming, rest)
	}

	if p.bodiless() {
		p.bodyKind = http.BodyAbsent
		return eComplete, nil
	}

	if hasTE {
		if p.headers.Chunked() {
			p.bodyKind = http.BodyChunked
			p.trailer = headers.New()
			return eChunkSize, nil
		}

		if !p.response {
			return eFailed, p.fail(UnsupportedTransferEncoding, rest)
		}

		return p.untilClose(), nil
	}

	if len(contentLengths) == 0 {
		if p.response {
			return p.untilClose(), nil
		}

		p.bodyKind = http.BodyAbsent
		return eComplete, nil
	}

	length, err := headers.ParseContentLength(contentLengths[0])
	if err != nil {
		return eFailed, p.fail(InvalidContentLength, rest)
	}

	if length > p.cfg.Body.MaxSize {
		return eFailed, p.fail(BodyTooLarge, rest)
	}

	p.bodyKind = http.BodyFixed
	p.remaining = length
	p.body = make([]byte, 0, min(length, uint64(p.cfg.Body.BufferPrealloc)))

	if length == 0 {
		return eComplete, nil
	}

	return eBodyFixed, nil
}

func (p *Parser[M]) untilClose() parserState {
	p.bodyKind = http.BodyFixed
	p.body = make([]byte, 0, p.cfg.Body.BufferPrealloc)
	return eBodyUntilClose
}

func (p *Parser[M]) bodiless() bool {
	if !p.response {
		return false
	}

	switch {
	case !p.code.AllowsBody(), p.requestMethod == method.HEAD:
		return true
	case p.requestMethod == method.CONNECT:
		return p.code.IsSuccess()
	default:
		return false
	}
}

// parseChunkSize parses chunk-size and ignores chunk extensions.
func (p *Parser[M]) parseChunkSize(line, rest []byte) (size uint64, err *Error) {
	digits := line
	if semicolon := bytes.IndexByte(line, ';'); semicolon != -1 {
		digits = bytes.TrimRight(line[:semicolon], " \t")
	}

	if len(digits) == 0 {
		return 0, p.fail(MalformedChunk, rest)
	}

	for _, c := range digits {
		halfbyte := hexconv.Halfbyte[c]
		if halfbyte == 0xFF {
			return 0, p.fail(MalformedChunk, rest)
		}

		if size > math.MaxUint64>>4 {
			return 0, p.fail(ChunkSizeTooLarge, rest)
		}

		if size = size<<4 | uint64(halfbyte); size > p.cfg.Body.MaxChunkSize {
			return 0, p.fail(ChunkSizeTooLarge, rest)
		}
	}

	return size, nil
}

func (p *Parser[M]) assembleBody() http.Body {
	switch p.bodyKind {
	case http.BodyFixed:
		return http.NewFixedBody(p.body)
	case http.BodyChunked:
		return http.NewChunkedBody(p.chunks, p.trailer)
	default:
		return http.NoBody()
	}
}

func (p *Parser[M]) fail(kind Kind, rest []byte) *Error {
	return newError(kind, p.base+uint64(p.fed-len(rest)))
}

func (p *Parser[M]) failEOF(kind Kind) error {
	p.state, p.err = eFailed, newError(kind, p.base)
	return p.err
}

// reset prepares the parser for the next message. Everything handed over with the previous
// message is left untouched.
func (p *Parser[M]) reset() {
	p.state = eStartLine
	p.method, p.target, p.version = "", target.Target{}, proto.Unknown
	p.code, p.reason, p.requestMethod = 0, "", ""
	p.headers = headers.NewPrealloc(p.cfg.Headers.Number.Default)
	p.trailer = nil
	p.inTrailer, p.hasPending = false, false
	p.pendingName, p.pendingValue = "", p.pendingValue[:0]
	p.space = 0
	p.bodyKind, p.body, p.bodySize, p.remaining = http.BodyAbsent, nil, 0, 0
	p.chunks, p.chunk = nil, nil
	p.startLine.Clear()
	p.fieldLine.Clear()
	p.chunkLine.Clear()
}

type lineStatus uint8

const (
	lineIncomplete lineStatus = iota
	lineComplete
	lineTooLong
	lineBareCR
)

// readLine cuts a line terminated by LF, accumulating incomplete lines in the buffer. The
// returned line is stripped of its terminator, CRLF or a bare LF (RFC 9112, 2.2), and is valid
// until the buffer is cleared. The buffer must be able to hold limit+1 bytes, so the CR fits.
func readLine(buff *buffer.Buffer, limit int, data []byte) (line, rest []byte, st lineStatus) {
	lf := bytes.IndexByte(data, '\n')
	if lf == -1 {
		if !buff.Append(data) {
			return nil, nil, lineTooLong
		}

		return nil, nil, lineIncomplete
	}

	rest = data[lf+1:]
	if !buff.Append(data[:lf]) {
		return nil, rest, lineTooLong
	}

	line = buff.Preview()
	if len(line) > 0 && line[len(line)-1] == '\r' {
		line = line[:len(line)-1]
	}

	switch {
	case len(line) > limit:
		return nil, rest, lineTooLong
	case bytes.IndexByte(line, '\r') != -1:
		return nil, rest, lineBareCR
	}

	return line, rest, lineComplete
}
