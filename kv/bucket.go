// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

// Bucket provides logical bucket for kv store.
type Bucket string

// ProxyGetPutter returns a GetPutter whose keys are prefixed by the bucket.
func (b Bucket) ProxyGetPutter(src GetPutter) GetPutter {
	return &bucketProxy{prefix: string(b), src: src}
}

// Key returns the prefixed key.
func (b Bucket) Key(key []byte) []byte {
	return append([]byte(b), key...)
}

type bucketProxy struct {
	prefix string
	src    GetPutter
}

func (p *bucketProxy) key(k []byte) []byte {
	return append([]byte(p.prefix), k...)
}

func (p *bucketProxy) Get(key []byte) ([]byte, error) { return p.src.Get(p.key(key)) }
func (p *bucketProxy) Has(key []byte) (bool, error)   { return p.src.Has(p.key(key)) }
func (p *bucketProxy) IsNotFound(err error) bool      { return p.src.IsNotFound(err) }
func (p *bucketProxy) Put(key, value []byte) error    { return p.src.Put(p.key(key), value) }
func (p *bucketProxy) Delete(key []byte) error        { return p.src.Delete(p.key(key)) }
func (p *bucketProxy) NewBatch() Batch                { return &bucketBatch{p, p.src.NewBatch()} }

type bucketBatch struct {
	proxy *bucketProxy
	batch Batch
}

func (b *bucketBatch) Put(key, value []byte) error { return b.batch.Put(b.proxy.key(key), value) }
func (b *bucketBatch) Delete(key []byte) error     { return b.batch.Delete(b.proxy.key(key)) }
func (b *bucketBatch) Len() int                    { return b.batch.Len() }
func (b *bucketBatch) Write() error                { return b.batch.Write() }
