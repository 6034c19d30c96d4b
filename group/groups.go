// Package group implements the packaging step of Sif's grouped-data stage: it scans the
// sorted output of a shuffle and presents each group to a consumer as a Bag.
package group

import (
	"context"

	"github.com/go-sif/bag"
	"github.com/go-sif/bag/bags"
	errors "github.com/go-sif/bag/errors"
	iutil "github.com/go-sif/bag/internal/util"
	"github.com/go-sif/bag/logging"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// OnGroup consumes the Bag of a single group. The Bag is only valid until OnGroup returns.
type OnGroup func(key bag.GroupKey, b bag.Bag) error

// groupReader holds at most one KeyedTuple of look-ahead over a SortedStream
type groupReader struct {
	stream SortedStream
	peeked *KeyedTuple
	err    error
}

func (r *groupReader) fill() {
	if r.peeked != nil || r.err != nil || !r.stream.HasNext() {
		return
	}
	r.peeked, r.err = r.stream.Next()
}

// keyIterator yields the raw records of a single group, stopping at the key switch
type keyIterator struct {
	reader *groupReader
	key    bag.GroupKey
}

// HasNext returns true iff the next record in the stream belongs to this group. A
// pending stream error also reports true, so that Next can surface it.
func (ki *keyIterator) HasNext() bool {
	ki.reader.fill()
	if ki.reader.err != nil {
		return true
	}
	return ki.reader.peeked != nil && ki.reader.peeked.Key.Equals(ki.key)
}

// Next returns the next raw record of this group
func (ki *keyIterator) Next() (*bag.IndexedTuple, error) {
	ki.reader.fill()
	if ki.reader.err != nil {
		return nil, ki.reader.err
	}
	if ki.reader.peeked == nil || !ki.reader.peeked.Key.Equals(ki.key) {
		return nil, errors.NoMoreTuplesError{}
	}
	it := &ki.reader.peeked.Tuple
	ki.reader.peeked = nil
	return it, nil
}

// Groups scans a SortedStream, constructing exactly one ReadOnceBag for each run of
// equal keys and passing it to onGroup. Records which onGroup does not read are skipped
// once it returns. Keys which are equal but not adjacent in the stream produce separate groups.
func Groups(stream SortedStream, pkgr bag.Packager, onGroup OnGroup) error {
	return groups(context.Background(), stream, pkgr, onGroup)
}

func groups(ctx context.Context, stream SortedStream, pkgr bag.Packager, onGroup OnGroup) error {
	log := logging.Logger()
	safeOnGroup := iutil.SafeGroupOperation(iutil.GroupOperation(onGroup))
	reader := &groupReader{stream: stream}
	numGroups := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		reader.fill()
		if reader.err != nil {
			return reader.err
		}
		if reader.peeked == nil {
			break
		}
		key := reader.peeked.Key
		tuples := &keyIterator{reader: reader, key: key}
		log.WithFields(logrus.Fields{"key": key.String()}).Trace("Packaging group")
		if err := safeOnGroup(key, bags.NewReadOnceBag(pkgr, tuples, key)); err != nil {
			return err
		}
		for skipped := 0; tuples.HasNext(); skipped++ {
			if _, err := tuples.Next(); err != nil {
				return err
			}
			if skipped == 0 {
				log.Debugf("Skipping unread records of group %s", key.String())
			}
		}
		numGroups++
	}
	log.Debugf("Packaged %d groups", numGroups)
	return nil
}

// GroupsParallel runs Groups over several shuffle buckets at once, one goroutine per
// bucket, all sharing a single Packager. onGroup must be safe for concurrent use. The
// first error cancels the remaining scans at their next group boundary and is returned.
func GroupsParallel(ctx context.Context, streams []SortedStream, pkgr bag.Packager, onGroup OnGroup) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, stream := range streams {
		stream := stream
		g.Go(func() error {
			return groups(gctx, stream, pkgr, onGroup)
		})
	}
	return g.Wait()
}
