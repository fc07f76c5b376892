package partialjson

import "bytes"

var fence = []byte("```")

// StripFences removes a markdown code fence wrapped around a JSON payload,
// e.g. "```json\n{...}\n```". Text without a leading fence is returned
// unchanged. While the opening fence line is still streaming nothing usable
// has arrived yet, so an empty slice is returned.
func StripFences(data []byte) []byte {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if !bytes.HasPrefix(trimmed, fence) {
		if len(trimmed) < len(fence) && bytes.HasPrefix(fence, trimmed) && len(trimmed) > 0 {
			return nil
		}
		return data
	}

	body := trimmed[len(fence):]
	nl := bytes.IndexByte(body, '\n')
	if nl < 0 {
		return nil
	}
	body = body[nl+1:]

	if end := bytes.Index(body, fence); end >= 0 {
		body = body[:end]
	}
	return body
}
