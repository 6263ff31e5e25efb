package message

import "time"

// Attributes holds the CloudEvents context attributes of a message.
//
// Attributes is not safe for concurrent read/write access.
type Attributes map[string]any

// CloudEvents attribute keys for use in Attributes map literals.
const (
	AttrID              = "id"
	AttrType            = "type"
	AttrSource          = "source"
	AttrSpecVersion     = "specversion"
	AttrSubject         = "subject"
	AttrTime            = "time"
	AttrDataContentType = "datacontenttype"
	AttrDataSchema      = "dataschema"
)

// ID returns the id attribute.
func (a Attributes) ID() (string, bool) {
	return a.str(AttrID)
}

// Type returns the type attribute.
func (a Attributes) Type() (string, bool) {
	return a.str(AttrType)
}

// Source returns the source attribute.
func (a Attributes) Source() (string, bool) {
	return a.str(AttrSource)
}

// Subject returns the subject attribute.
func (a Attributes) Subject() (string, bool) {
	return a.str(AttrSubject)
}

// Time returns the time attribute. Both time.Time values and RFC 3339
// strings are accepted.
func (a Attributes) Time() (time.Time, bool) {
	switch v := a[AttrTime].(type) {
	case time.Time:
		return v, true
	case string:
		t, err := time.Parse(time.RFC3339Nano, v)
		return t, err == nil
	default:
		return time.Time{}, false
	}
}

func (a Attributes) str(key string) (string, bool) {
	s, ok := a[key].(string)
	return s, ok && s != ""
}
