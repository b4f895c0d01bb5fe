package protocol

// Handshake opens every connection and names the state to switch to.
type Handshake struct {
	ProtocolVersion int32
	ServerAddress   string
	ServerPort      uint16
	NextState       int32
}

// Handshake.NextState values.
const (
	NextStateStatus int32 = 1
	NextStateLogin  int32 = 2
)

func (p *Handshake) Decode(r *Reader) (err error) {
	if p.ProtocolVersion, err = r.ReadVarInt(); err != nil {
		return err
	}
	if p.ServerAddress, err = r.ReadString(255); err != nil {
		return err
	}
	if p.ServerPort, err = r.ReadUint16(); err != nil {
		return err
	}
	p.NextState, err = r.ReadVarInt()
	return err
}

func (p *Handshake) Encode(w *Writer) error {
	w.WriteVarInt(p.ProtocolVersion)
	if err := w.WriteString(p.ServerAddress, 255); err != nil {
		return err
	}
	w.WriteUint16(p.ServerPort)
	w.WriteVarInt(p.NextState)
	return nil
}

type StatusRequest struct{}

func (p *StatusRequest) Decode(r *Reader) error { return nil }
func (p *StatusRequest) Encode(w *Writer) error { return nil }

type StatusPing struct {
	Payload int64
}

func (p *StatusPing) Decode(r *Reader) (err error) {
	p.Payload, err = r.ReadInt64()
	return err
}

func (p *StatusPing) Encode(w *Writer) error {
	w.WriteInt64(p.Payload)
	return nil
}

type LoginStart struct {
	Name string
}

// MaxUsernameLen bounds LoginStart.Name.
const MaxUsernameLen = 16

func (p *LoginStart) Decode(r *Reader) (err error) {
	p.Name, err = r.ReadString(MaxUsernameLen)
	return err
}

func (p *LoginStart) Encode(w *Writer) error {
	return w.WriteString(p.Name, MaxUsernameLen)
}

// EncryptionResponse carries the RSA-encrypted shared secret and verify token.
type EncryptionResponse struct {
	SharedSecret []byte
	VerifyToken  []byte
}

const maxEncryptedLen = 1024

func (p *EncryptionResponse) Decode(r *Reader) (err error) {
	if p.SharedSecret, err = r.ReadByteArray(maxEncryptedLen); err != nil {
		return err
	}
	p.VerifyToken, err = r.ReadByteArray(maxEncryptedLen)
	return err
}

func (p *EncryptionResponse) Encode(w *Writer) error {
	if err := w.WriteByteArray(p.SharedSecret, maxEncryptedLen); err != nil {
		return err
	}
	return w.WriteByteArray(p.VerifyToken, maxEncryptedLen)
}
