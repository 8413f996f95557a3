package gifenc

import "io"

// maxSubBlockLen is the largest payload a single GIF data sub-block may
// carry; the length prefix is a single byte.
const maxSubBlockLen = 255

// writeSubBlocks frames data into length-prefixed sub-blocks terminated by
// a zero-length block, the container format every GIF data stream (LZW
// raster data, application/comment extensions) shares.
func writeSubBlocks(w io.Writer, data []byte) error {
	for len(data) > 0 {
		n := len(data)
		if n > maxSubBlockLen {
			n = maxSubBlockLen
		}
		if _, err := w.Write([]byte{byte(n)}); err != nil {
			return err
		}
		if _, err := w.Write(data[:n]); err != nil {
			return err
		}
		data = data[n:]
	}
	_, err := w.Write([]byte{0})
	return err
}
