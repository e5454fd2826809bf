package method

// List contains all the registered methods.
var List = []Method{GET, HEAD, POST, PUT, DELETE, CONNECT, OPTIONS, TRACE, PATCH}

type property struct {
	safe, idempotent bool
}

// properties is filled once and is read-only afterwards.
var properties = map[Method]property{
	GET:     {safe: true, idempotent: true},
	HEAD:    {safe: true, idempotent: true},
	POST:    {},
	PUT:     {idempotent: true},
	DELETE:  {idempotent: true},
	CONNECT: {},
	OPTIONS: {safe: true, idempotent: true},
	TRACE:   {safe: true, idempotent: true},
	PATCH:   {},
}
