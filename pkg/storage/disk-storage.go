package storage

import (
	"compress/gzip"
	"context"
	"errors"
	"io"
	"iter"
	"log"
	"os"
	"path"

	"github.com/bytedance/sonic"
	"github.com/matst80/slask-listings/pkg/types"
)

const listingsFile = "listings.jz"

// batchSize is how many listings are handed to the handler per change.
const batchSize = 1000

func (d *DiskStorage) ensureFolder(fileName string) error {
	return os.MkdirAll(path.Dir(fileName), 0o755)
}

// LoadListings streams the saved listings into the handler in batches. A
// missing file is not an error, the store then starts empty.
func (d *DiskStorage) LoadListings(handler types.ListingHandler) error {
	fileName, _ := d.GetFileName(listingsFile)
	file, err := os.Open(fileName)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("No listings file found at %s", fileName)
			return nil
		}
		return err
	}
	defer file.Close()

	zipReader, err := gzip.NewReader(file)
	if err != nil {
		return err
	}
	defer zipReader.Close()

	dec := sonic.ConfigDefault.NewDecoder(zipReader)
	ctx := context.Background()
	batch := make([]types.Listing, 0, batchSize)
	total := 0
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		total += len(batch)
		err := handler.HandleChange(ctx, types.ListingChange{Upserted: batch})
		batch = make([]types.Listing, 0, batchSize)
		return err
	}
	for {
		var l types.Listing
		if err = dec.Decode(&l); err != nil {
			break
		}
		batch = append(batch, l)
		if len(batch) >= batchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if !errors.Is(err, io.EOF) {
		return err
	}
	if err := flush(); err != nil {
		return err
	}
	log.Printf("Loaded %d listings from %s", total, fileName)
	return nil
}

func (d *DiskStorage) SaveListings(listings iter.Seq[types.Listing]) error {
	fileName, tmpFileName := d.GetFileName(listingsFile)
	if err := d.ensureFolder(fileName); err != nil {
		return err
	}
	file, err := os.Create(tmpFileName)
	if err != nil {
		return err
	}

	zipWriter := gzip.NewWriter(file)
	enc := sonic.ConfigDefault.NewEncoder(zipWriter)
	count := 0
	for l := range listings {
		if err = enc.Encode(l); err != nil {
			break
		}
		count++
	}
	if err == nil {
		err = zipWriter.Close()
	} else {
		_ = zipWriter.Close()
	}
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tmpFileName)
		return err
	}
	if err = os.Rename(tmpFileName, fileName); err != nil {
		_ = os.Remove(tmpFileName)
		return err
	}
	log.Printf("Saved %d listings to %s", count, fileName)
	return nil
}
