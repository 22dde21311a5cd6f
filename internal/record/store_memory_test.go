package record_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"vitalis/internal/record"
	"vitalis/pkg/domain"
	"vitalis/pkg/platform/sentinel"
)

func seedRecord(name string) record.Record {
	return record.Record{
		SubjectName: name,
		EventStart:  time.Date(1940, 3, 1, 0, 0, 0, 0, time.UTC),
		EventEnd:    time.Date(2020, 6, 15, 0, 0, 0, 0, time.UTC),
		Location:    "Lisbon",
		Author:      domain.NewAccountID(),
		Owner:       domain.NewAccountID(),
		CreatedAt:   time.Now().UTC(),
	}
}

func TestInsertAssignsSequentialIDs(t *testing.T) {
	ctx := context.Background()
	store := record.NewInMemoryStore()

	for want := domain.RecordID(1); want <= 3; want++ {
		id, err := store.Insert(ctx, seedRecord("Maria Silva"))
		require.NoError(t, err)
		require.Equal(t, want, id)
	}

	count, err := store.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(3), count)
}

func TestInsertIgnoresProvidedID(t *testing.T) {
	ctx := context.Background()
	store := record.NewInMemoryStore()

	r := seedRecord("Maria Silva")
	r.ID = 99
	id, err := store.Insert(ctx, r)
	require.NoError(t, err)
	require.Equal(t, domain.RecordID(1), id)
}

func TestGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := record.NewInMemoryStore()

	in := seedRecord("Maria Silva")
	in.NationalID = "PT-123456"
	in.AuxiliaryRef = "ipfs://aux"
	id, err := store.Insert(ctx, in)
	require.NoError(t, err)

	got, err := store.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, id, got.ID)
	require.Equal(t, in.SubjectName, got.SubjectName)
	require.Equal(t, in.EventStart, got.EventStart)
	require.Equal(t, in.EventEnd, got.EventEnd)
	require.Equal(t, in.Location, got.Location)
	require.Equal(t, in.AuxiliaryRef, got.AuxiliaryRef)
	require.Equal(t, in.NationalID, got.NationalID)
	require.Equal(t, in.Author, got.Author)
	require.Equal(t, in.Owner, got.Owner)
	require.False(t, got.Verified)
}

func TestGetMissing(t *testing.T) {
	store := record.NewInMemoryStore()

	_, err := store.Get(context.Background(), 42)
	require.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestSetVerified(t *testing.T) {
	ctx := context.Background()
	store := record.NewInMemoryStore()

	id, err := store.Insert(ctx, seedRecord("Maria Silva"))
	require.NoError(t, err)

	require.NoError(t, store.SetVerified(ctx, id))

	got, err := store.Get(ctx, id)
	require.NoError(t, err)
	require.True(t, got.Verified)

	require.ErrorIs(t, store.SetVerified(ctx, 42), sentinel.ErrNotFound)
}

func TestSetAuxiliaryRef(t *testing.T) {
	ctx := context.Background()
	store := record.NewInMemoryStore()

	id, err := store.Insert(ctx, seedRecord("Maria Silva"))
	require.NoError(t, err)

	require.NoError(t, store.SetAuxiliaryRef(ctx, id, "ipfs://memorial-1"))

	got, err := store.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "ipfs://memorial-1", got.AuxiliaryRef)

	require.ErrorIs(t, store.SetAuxiliaryRef(ctx, 42, "x"), sentinel.ErrNotFound)
}

func TestSearchNamePreservesCreationOrder(t *testing.T) {
	ctx := context.Background()
	store := record.NewInMemoryStore()

	first, err := store.Insert(ctx, seedRecord("MARIA SILVA"))
	require.NoError(t, err)
	_, err = store.Insert(ctx, seedRecord("Joao Costa"))
	require.NoError(t, err)
	third, err := store.Insert(ctx, seedRecord("maria silva"))
	require.NoError(t, err)

	ids, err := store.SearchName(ctx, record.NormalizeName("Maria Silva"))
	require.NoError(t, err)
	require.Equal(t, []domain.RecordID{first, third}, ids)

	none, err := store.SearchName(ctx, record.NormalizeName("Nobody Here"))
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestHasForNationalID(t *testing.T) {
	ctx := context.Background()
	store := record.NewInMemoryStore()

	r := seedRecord("Maria Silva")
	r.NationalID = "PT-123456"
	_, err := store.Insert(ctx, r)
	require.NoError(t, err)

	has, err := store.HasForNationalID(ctx, "PT-123456")
	require.NoError(t, err)
	require.True(t, has)

	has, err = store.HasForNationalID(ctx, "PT-999999")
	require.NoError(t, err)
	require.False(t, has)
}
