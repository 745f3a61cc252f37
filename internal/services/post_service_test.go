package services

import (
	"context"
	"errors"
	"testing"

	"github.com/ahmetcoskunkizilkaya/imagepost-backend/internal/models"
	"github.com/google/uuid"
)

func TestCreatePost_UploadsImageAndRecordsAttachment(t *testing.T) {
	db := newTestDB(t)
	blobs := &fakeBlobStore{}
	svc := NewPostService(db, blobs, NewPostFreezer(db))
	owner := createTestUser(t, db, "owner@example.com")

	post, attachment, err := svc.CreatePost(context.Background(), owner.ID, "sunset", "a caption", "sunset.jpg", "image/jpeg", []byte("jpeg bytes"))
	if err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}
	if attachment.PostID != post.ID {
		t.Fatalf("attachment not linked to post")
	}
	if attachment.ByteSize != int64(len("jpeg bytes")) {
		t.Fatalf("expected byte size recorded, got %d", attachment.ByteSize)
	}
	stored, ok := blobs.objects[attachment.StorageKey]
	if !ok || string(stored) != "jpeg bytes" {
		t.Fatalf("expected image bytes in object storage under %q", attachment.StorageKey)
	}
}

func TestCreatePost_RejectsUnsupportedType(t *testing.T) {
	db := newTestDB(t)
	svc := NewPostService(db, &fakeBlobStore{}, NewPostFreezer(db))
	owner := createTestUser(t, db, "owner@example.com")

	_, _, err := svc.CreatePost(context.Background(), owner.ID, "t", "", "doc.pdf", "application/pdf", []byte("%PDF"))
	var vErr *ValidationError
	if !errors.As(err, &vErr) || vErr.Field != "image" {
		t.Fatalf("expected validation error on image, got %v", err)
	}
}

func TestGetPost_FrozenHiddenFromStrangers(t *testing.T) {
	db := newTestDB(t)
	svc := NewPostService(db, &fakeBlobStore{}, NewPostFreezer(db))
	owner := createTestUser(t, db, "owner@example.com")
	stranger := createTestUser(t, db, "stranger@example.com")
	post, _ := createTestPostWithImage(t, db, owner)

	if err := NewPostFreezer(db).Freeze(context.Background(), post, models.FreezeTemporary, "flagged"); err != nil {
		t.Fatalf("Freeze failed: %v", err)
	}

	ctx := context.Background()
	if _, _, _, err := svc.GetPost(ctx, post.ID, stranger.ID, false); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("expected frozen post hidden from strangers, got %v", err)
	}
	if _, _, _, err := svc.GetPost(ctx, post.ID, owner.ID, false); err != nil {
		t.Fatalf("expected owner to see their frozen post, got %v", err)
	}
	if _, _, _, err := svc.GetPost(ctx, post.ID, stranger.ID, true); err != nil {
		t.Fatalf("expected admin to see frozen post, got %v", err)
	}
}

func TestGetPost_ReturnsPresignedImageURL(t *testing.T) {
	db := newTestDB(t)
	svc := NewPostService(db, &fakeBlobStore{}, NewPostFreezer(db))
	owner := createTestUser(t, db, "owner@example.com")
	post, attachment := createTestPostWithImage(t, db, owner)

	_, got, imageURL, err := svc.GetPost(context.Background(), post.ID, owner.ID, false)
	if err != nil {
		t.Fatalf("GetPost failed: %v", err)
	}
	if got.ID != attachment.ID {
		t.Fatalf("expected attachment %v, got %v", attachment.ID, got.ID)
	}
	want := "https://example.com/" + attachment.StorageKey
	if imageURL != want {
		t.Fatalf("expected presigned link %q, got %q", want, imageURL)
	}
}

func TestListPosts_ExcludesFrozen(t *testing.T) {
	db := newTestDB(t)
	svc := NewPostService(db, &fakeBlobStore{}, NewPostFreezer(db))
	owner := createTestUser(t, db, "owner@example.com")

	visible, _ := createTestPostWithImage(t, db, owner)
	frozen, _ := createTestPostWithImage(t, db, owner)
	if err := NewPostFreezer(db).Freeze(context.Background(), frozen, models.FreezeTemporary, "flagged"); err != nil {
		t.Fatalf("Freeze failed: %v", err)
	}

	posts, err := svc.ListPosts(50, 0)
	if err != nil {
		t.Fatalf("ListPosts failed: %v", err)
	}
	if len(posts) != 1 || posts[0].ID != visible.ID {
		t.Fatalf("expected only the unfrozen post, got %d posts", len(posts))
	}
}

func TestFrozenPosts_FilterAndStats(t *testing.T) {
	db := newTestDB(t)
	freezer := NewPostFreezer(db)
	svc := NewPostService(db, &fakeBlobStore{}, freezer)
	owner := createTestUser(t, db, "owner@example.com")

	temp, _ := createTestPostWithImage(t, db, owner)
	perm, _ := createTestPostWithImage(t, db, owner)
	_, _ = createTestPostWithImage(t, db, owner)

	if err := freezer.Freeze(context.Background(), temp, models.FreezeTemporary, "flagged"); err != nil {
		t.Fatalf("Freeze failed: %v", err)
	}
	if err := freezer.Freeze(context.Background(), perm, models.FreezePermanent, "admin decision"); err != nil {
		t.Fatalf("Freeze failed: %v", err)
	}

	posts, stats, err := svc.FrozenPosts("")
	if err != nil {
		t.Fatalf("FrozenPosts failed: %v", err)
	}
	if stats.Total != 2 || stats.Temporary != 1 || stats.Permanent != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if len(posts) != 2 {
		t.Fatalf("expected 2 frozen posts, got %d", len(posts))
	}

	temporary, _, err := svc.FrozenPosts(models.FreezeTemporary)
	if err != nil {
		t.Fatalf("FrozenPosts(temporary) failed: %v", err)
	}
	if len(temporary) != 1 || temporary[0].ID != temp.ID {
		t.Fatalf("expected only the temporary freeze, got %d posts", len(temporary))
	}
}

func TestUnfreezeAndFreezePermanent(t *testing.T) {
	db := newTestDB(t)
	svc := NewPostService(db, &fakeBlobStore{}, NewPostFreezer(db))
	owner := createTestUser(t, db, "owner@example.com")
	post, _ := createTestPostWithImage(t, db, owner)

	frozen, err := svc.FreezePermanent(context.Background(), post.ID, "")
	if err != nil {
		t.Fatalf("FreezePermanent failed: %v", err)
	}
	if !frozen.PermanentlyFrozen() {
		t.Fatalf("expected permanent freeze, got %+v", frozen)
	}
	if frozen.FreezeReason == "" {
		t.Fatalf("expected a default freeze reason")
	}

	thawed, err := svc.Unfreeze(context.Background(), post.ID)
	if err != nil {
		t.Fatalf("Unfreeze failed: %v", err)
	}
	if thawed.Frozen() {
		t.Fatalf("expected post unfrozen, got %+v", thawed)
	}

	var stored models.Post
	if err := db.First(&stored, "id = ?", post.ID).Error; err != nil {
		t.Fatalf("failed to reload post: %v", err)
	}
	if stored.Frozen() {
		t.Fatalf("expected freeze cleared in storage")
	}

	if _, err := svc.Unfreeze(context.Background(), uuid.New()); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound, got %v", err)
	}
}
