package export

import (
	"io"

	"github.com/pkg/errors"
	"github.com/ugorji/go/codec"

	"github.com/arose/molstar/pkg/render"
)

var msgpackHandle = &codec.MsgpackHandle{WriteExt: true}

// WriteMsgpack encodes the mesh data of objs as one msgpack array.
func WriteMsgpack(w io.Writer, objs []*render.Object) error {
	return EncodeMsgpack(w, MeshDataList(objs))
}

// EncodeMsgpack encodes already converted mesh data.
func EncodeMsgpack(w io.Writer, data []MeshData) error {
	if err := codec.NewEncoder(w, msgpackHandle).Encode(data); err != nil {
		return errors.Wrap(err, "encode msgpack meshes")
	}
	return nil
}

// ReadMsgpack decodes what WriteMsgpack wrote.
func ReadMsgpack(r io.Reader) ([]MeshData, error) {
	var data []MeshData
	if err := codec.NewDecoder(r, msgpackHandle).Decode(&data); err != nil {
		return nil, errors.Wrap(err, "decode msgpack meshes")
	}
	return data, nil
}
