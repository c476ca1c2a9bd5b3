package c64

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blankD64 returns an all-zero image sized exactly like a real 35-track .d64,
// with track 1's BAM entry marked free so Save has somewhere to land.
func blankD64(t *testing.T) []byte {
	t.Helper()
	total := 0
	for tr := 1; tr <= diskTracks; tr++ {
		total += sectorsPerTrack[tr] * sectorSize
	}
	image := make([]byte, total)

	d := &Disk{image: image}
	bamOff := d.sectorOffset(diskBAMTrack, diskBAMSector)
	base := bamOff + 4 // track 1's 4-byte BAM entry
	image[base] = 1              // 1 free sector
	image[base+1] = 0x01         // bit 0 (sector 0) marked free
	return image
}

func TestDisk_Attach_NotAttachedUntilImageSet(t *testing.T) {
	d := NewDisk()
	assert.False(t, d.Attached())
	d.Attach(blankD64(t))
	assert.True(t, d.Attached())
}

func TestDisk_SaveThenLoad_RoundTrips(t *testing.T) {
	d := NewDisk()
	d.Attach(blankD64(t))

	payload := []byte("HELLO")
	require.NoError(t, d.Save("TEST", payload))

	got, ok := d.Load("TEST")
	require.True(t, ok)
	assert.Equal(t, payload, got)
}

func TestDisk_Save_RejectsOversizedPayload(t *testing.T) {
	d := NewDisk()
	d.Attach(blankD64(t))

	err := d.Save("BIG", make([]byte, 255))
	require.Error(t, err)
	var diskErr *DiskError
	require.ErrorAs(t, err, &diskErr)
}

func TestDisk_Save_DiskFull_WhenNoFreeSectors(t *testing.T) {
	d := NewDisk()
	image := blankD64(t)
	// Zero the free-sector count of track 1, the one track this fixture marks free.
	bamOff := d.sectorOffset(diskBAMTrack, diskBAMSector)
	image[bamOff+4] = 0
	d.Attach(image)

	err := d.Save("NOPE", []byte("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "full")
}

func TestDisk_Load_UnknownFile_ReturnsFalse(t *testing.T) {
	d := NewDisk()
	d.Attach(blankD64(t))
	_, ok := d.Load("NOSUCHFILE")
	assert.False(t, ok)
}

// TestDisk_Attach_ParsesStandardDirectoryEntryOffsets builds a directory
// sector by hand using the real .d64 convention (each 32-byte entry at
// sec[i*32:i*32+32], file-type at entry[2], track/sector at entry[3:5],
// filename at entry[5:21]) rather than going through Save, to pin the
// absolute byte offsets Attach must read.
func TestDisk_Attach_ParsesStandardDirectoryEntryOffsets(t *testing.T) {
	image := blankD64(t)
	d := &Disk{image: image}

	dirOff := d.sectorOffset(diskDirTrack, diskDirFirstSector)
	sec := image[dirOff : dirOff+sectorSize]
	sec[0] = 0 // no next directory sector
	sec[1] = 0

	entry := sec[0*32 : 0*32+32]
	entry[2] = 0x82 // PRG + locked
	entry[3] = 20   // data track
	entry[4] = 3    // data sector
	copy(entry[5:21], asciiToPET("HELLO", 16))

	// The 8th entry (offset 224) must also be parsed.
	entry8 := sec[7*32 : 7*32+32]
	entry8[2] = 0x82
	entry8[3] = 21
	entry8[4] = 5
	copy(entry8[5:21], asciiToPET("EIGHTH", 16))

	d.dir = make(map[string]dirEntry)
	d.Attach(image)

	got, ok := d.dir["HELLO"]
	require.True(t, ok, "first directory entry must be parsed from sec[2], not sec[4]")
	assert.Equal(t, dirEntry{track: 20, sector: 3}, got)

	got8, ok := d.dir["EIGHTH"]
	require.True(t, ok, "the 8th directory entry at offset 224 must not be dropped")
	assert.Equal(t, dirEntry{track: 21, sector: 5}, got8)
}
