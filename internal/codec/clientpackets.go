package codec

// This file parses the body bytes of every canonical client→server packet
// shape in the spec (§4.1).

// ChangeAction is the parsed CHANGE_ACTION body.
type ChangeAction struct {
	Action   uint8
	InfoText string
	MapMD5   string
	Mods     uint32
	Mode     uint8
	MapID    int32
}

// ParseChangeAction decodes a CHANGE_ACTION body.
func ParseChangeAction(body []byte) (ChangeAction, error) {
	r := NewReader(body)
	var c ChangeAction
	var err error
	if c.Action, err = r.U8(); err != nil {
		return ChangeAction{}, err
	}
	if c.InfoText, err = r.String(); err != nil {
		return ChangeAction{}, err
	}
	if c.MapMD5, err = r.String(); err != nil {
		return ChangeAction{}, err
	}
	if c.Mods, err = r.U32(); err != nil {
		return ChangeAction{}, err
	}
	if c.Mode, err = r.U8(); err != nil {
		return ChangeAction{}, err
	}
	if c.MapID, err = r.I32(); err != nil {
		return ChangeAction{}, err
	}
	return c, nil
}

// PublicMessage is the parsed SEND_PUBLIC_MESSAGE / SEND_PRIVATE_MESSAGE
// body. Sender and SenderID are always empty/zero on the wire — the
// gateway fills those in from the authenticated session, never trusting
// client-supplied identity.
type PublicMessage struct {
	Sender    string
	Message   string
	Recipient string
	SenderID  int32
}

// ParsePublicMessage decodes a SEND_PUBLIC_MESSAGE or SEND_PRIVATE_MESSAGE
// body; both share the same shape.
func ParsePublicMessage(body []byte) (PublicMessage, error) {
	r := NewReader(body)
	var m PublicMessage
	var err error
	if m.Sender, err = r.String(); err != nil {
		return PublicMessage{}, err
	}
	if m.Message, err = r.String(); err != nil {
		return PublicMessage{}, err
	}
	if m.Recipient, err = r.String(); err != nil {
		return PublicMessage{}, err
	}
	if m.SenderID, err = r.I32(); err != nil {
		return PublicMessage{}, err
	}
	return m, nil
}

// ParseChannelName decodes a CHANNEL_JOIN or CHANNEL_PART body: a single
// channel name string.
func ParseChannelName(body []byte) (string, error) {
	return NewReader(body).String()
}

// ParseStartSpectating decodes a START_SPECTATING body: the host's account
// id.
func ParseStartSpectating(body []byte) (int32, error) {
	return NewReader(body).I32()
}

// ParsePresenceFilter decodes an UPDATE_PRESENCE_FILTER body: a single
// filter byte.
func ParsePresenceFilter(body []byte) (uint8, error) {
	return NewReader(body).U8()
}
