package engine

import "strings"

// ConvertOptions are the user choices for creating an XLIFF file.
type ConvertOptions struct {
	File      string `json:"file"`
	Xliff     string `json:"xliff"`
	SrcLang   string `json:"srcLang"`
	TgtLang   string `json:"tgtLang"`
	Type      string `json:"type"`
	Enc       string `json:"enc"`
	Skeleton  string `json:"sklFolder"`
	Catalog   string `json:"catalog"`
	SRX       string `json:"srx"`
	Ditaval   string `json:"ditaval"`
	Config    string `json:"config"`
	Is20      bool   `json:"is20"`
	Paragraph bool   `json:"paragraph"`
	Embed     bool   `json:"embed"`
}

// Request builds the convert command; empty optional values are omitted
// so the engine applies its own defaults.
func (o ConvertOptions) Request() Request {
	req := NewRequest(CommandConvert,
		"file", o.File,
		"srcLang", o.SrcLang,
		"is20", o.Is20,
		"paragraph", o.Paragraph,
		"embed", o.Embed,
	)
	putIfSet(req, "xliff", o.Xliff)
	putIfSet(req, "type", o.Type)
	putIfSet(req, "enc", o.Enc)
	putIfSet(req, "sklFolder", o.Skeleton)
	putIfSet(req, "catalog", o.Catalog)
	putIfSet(req, "srx", o.SRX)
	putIfSet(req, "ditaval", o.Ditaval)
	putIfSet(req, "config", o.Config)
	if lang := strings.TrimSpace(o.TgtLang); lang != "" && lang != "none" {
		req["tgtLang"] = lang
	}
	return req
}

// MergeOptions are the user choices for merging a translated XLIFF file.
type MergeOptions struct {
	Xliff      string `json:"xliff"`
	Target     string `json:"target"`
	Catalog    string `json:"catalog"`
	Unapproved bool   `json:"unapproved"`
	ExportTMX  bool   `json:"exportTmx"`
}

// Request builds the merge command.
func (o MergeOptions) Request() Request {
	req := NewRequest(CommandMerge,
		"xliff", o.Xliff,
		"target", o.Target,
		"unapproved", o.Unapproved,
		"exportTmx", o.ExportTMX,
	)
	putIfSet(req, "catalog", o.Catalog)
	return req
}

// FileRequest builds commands that act on one XLIFF file: validation,
// analysis and translation tasks.
func FileRequest(command, file, catalog string) Request {
	req := NewRequest(command, "file", file)
	putIfSet(req, "catalog", catalog)
	return req
}

// StatusRequest asks for the progress of a submitted job.
func StatusRequest(processID string) Request {
	return NewRequest(CommandStatus, "process", processID)
}

// ResultRequest fetches the payload of a completed job with its result command.
func ResultRequest(command, processID string) Request {
	return NewRequest(command, "process", processID)
}

// StatusOf reads one status reply. A failed request reads as StatusError,
// never as a transport error.
func StatusOf(resp Response, err error) string {
	if err != nil {
		return StatusError
	}
	return resp.String("status")
}

func putIfSet(req Request, key, value string) {
	if value = strings.TrimSpace(value); value != "" {
		req[key] = value
	}
}
