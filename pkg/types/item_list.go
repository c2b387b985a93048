package types

import "github.com/RoaringBitmap/roaring/v2"

// ItemList is a set of listing ids backed by a roaring bitmap.
type ItemList struct {
	bm *roaring.Bitmap
}

func FromBitmap(bm *roaring.Bitmap) *ItemList {
	if bm == nil {
		bm = roaring.New()
	}
	return &ItemList{bm: bm}
}

func (l *ItemList) Bitmap() *roaring.Bitmap {
	if l.bm == nil {
		l.bm = roaring.New()
	}
	return l.bm
}

func (l *ItemList) Contains(id ListingId) bool {
	return l.bm != nil && l.bm.Contains(id)
}

func (l *ItemList) Len() int {
	if l.bm == nil {
		return 0
	}
	return int(l.bm.GetCardinality())
}

func (l *ItemList) IntersectionLen(other *ItemList) int {
	if l.bm == nil || other == nil || other.bm == nil {
		return 0
	}
	return int(l.bm.AndCardinality(other.bm))
}
