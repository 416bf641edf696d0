package service

import (
	"context"
	"testing"

	"github.com/openpress/blogcms/config"
	"github.com/openpress/blogcms/internal/dto"
	"github.com/openpress/blogcms/internal/model"
	"github.com/openpress/blogcms/pkg/redis"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakePostStore struct {
	posts  map[uint]*model.Post
	nextID uint
}

func newFakePostStore() *fakePostStore {
	return &fakePostStore{posts: make(map[uint]*model.Post), nextID: 1}
}

func (s *fakePostStore) GetByID(_ context.Context, id uint) (*model.Post, error) {
	p, ok := s.posts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *p
	return &copied, nil
}

func (s *fakePostStore) GetBySlug(_ context.Context, slug string) (*model.Post, error) {
	for _, p := range s.posts {
		if p.Slug == slug {
			copied := *p
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *fakePostStore) Create(_ context.Context, post *model.Post, _ []uint, _ []model.Tag) error {
	post.ID = s.nextID
	s.nextID++
	copied := *post
	s.posts[post.ID] = &copied
	return nil
}

func (s *fakePostStore) Update(_ context.Context, post *model.Post, sections []model.PostSection, _ []uint, _ []model.Tag) error {
	copied := *post
	copied.Sections = sections
	s.posts[post.ID] = &copied
	return nil
}

func (s *fakePostStore) Delete(_ context.Context, id uint) error {
	if _, ok := s.posts[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(s.posts, id)
	return nil
}

func (s *fakePostStore) ListPage(_ context.Context, offset, limit int, _ uint) ([]model.Post, int64, error) {
	all := s.ordered()
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (s *fakePostStore) ListAfterCursor(_ context.Context, cursor uint, limit int) ([]model.Post, error) {
	var out []model.Post
	for _, p := range s.ordered() {
		if p.ID > cursor {
			out = append(out, p)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (s *fakePostStore) Random(_ context.Context, n int) ([]model.Post, error) {
	all := s.ordered()
	if len(all) > n {
		all = all[:n]
	}
	return all, nil
}

func (s *fakePostStore) CountBySlugPrefix(_ context.Context, prefix string) (int64, error) {
	var count int64
	for _, p := range s.posts {
		if p.Slug == prefix || (len(p.Slug) > len(prefix) && p.Slug[:len(prefix)+1] == prefix+"-") {
			count++
		}
	}
	return count, nil
}

func (s *fakePostStore) ordered() []model.Post {
	out := make([]model.Post, 0, len(s.posts))
	for id := uint(1); id < s.nextID; id++ {
		if p, ok := s.posts[id]; ok {
			out = append(out, *p)
		}
	}
	return out
}

func newPostService(store *fakePostStore) *PostService {
	return NewPostService(store, &redis.Client{}, config.RedisConfig{}, zap.NewNop())
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hello World", "hello-world"},
		{"  Leading & Trailing!  ", "leading-trailing"},
		{"Already-Slugged", "already-slugged"},
		{"Go 1.24 Release Notes", "go-1-24-release-notes"},
		{"___", ""},
	}

	for _, tt := range tests {
		if got := slugify(tt.in); got != tt.want {
			t.Errorf("slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCreatePostGeneratesUniqueSlug(t *testing.T) {
	store := newFakePostStore()
	svc := newPostService(store)
	ctx := context.Background()

	req := &dto.CreatePostRequest{
		Title:    "My First Post",
		Sections: []dto.SectionInput{{Content: "body"}},
	}

	firstID, err := svc.Create(ctx, 1, req)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	secondID, err := svc.Create(ctx, 1, req)
	if err != nil {
		t.Fatalf("Create duplicate title: %v", err)
	}

	first := store.posts[firstID]
	second := store.posts[secondID]
	if first.Slug != "my-first-post" {
		t.Errorf("first slug = %q", first.Slug)
	}
	if second.Slug == first.Slug {
		t.Errorf("second slug %q collides with first", second.Slug)
	}
}

func TestCreatePostOrdersSections(t *testing.T) {
	store := newFakePostStore()
	svc := newPostService(store)

	id, err := svc.Create(context.Background(), 7, &dto.CreatePostRequest{
		Title: "Sectioned",
		Sections: []dto.SectionInput{
			{Content: "intro"},
			{Content: "middle"},
			{Content: "outro"},
		},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	post := store.posts[id]
	if post.AuthorID != 7 {
		t.Errorf("AuthorID = %d, want 7", post.AuthorID)
	}
	for i, s := range post.Sections {
		if s.SortOrder != i {
			t.Errorf("section %d SortOrder = %d", i, s.SortOrder)
		}
	}
}

func TestListCursorPagination(t *testing.T) {
	store := newFakePostStore()
	svc := newPostService(store)
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		_, err := svc.Create(ctx, 1, &dto.CreatePostRequest{
			Title:    "Post " + string(rune('A'+i)),
			Sections: []dto.SectionInput{{Content: "body"}},
		})
		if err != nil {
			t.Fatalf("Create %d: %v", i, err)
		}
	}

	page, err := svc.ListCursor(ctx, 0, 3)
	if err != nil {
		t.Fatalf("ListCursor: %v", err)
	}
	if len(page.Posts) != 3 || !page.HasMore {
		t.Fatalf("page 1: %d posts, hasMore=%v", len(page.Posts), page.HasMore)
	}

	page2, err := svc.ListCursor(ctx, page.NextCursor, 3)
	if err != nil {
		t.Fatalf("ListCursor page 2: %v", err)
	}
	if len(page2.Posts) != 3 || !page2.HasMore {
		t.Fatalf("page 2: %d posts, hasMore=%v", len(page2.Posts), page2.HasMore)
	}
	if page2.Posts[0].ID <= page.Posts[len(page.Posts)-1].ID {
		t.Error("page 2 overlaps page 1")
	}

	page3, err := svc.ListCursor(ctx, page2.NextCursor, 3)
	if err != nil {
		t.Fatalf("ListCursor page 3: %v", err)
	}
	if len(page3.Posts) != 1 || page3.HasMore {
		t.Fatalf("page 3: %d posts, hasMore=%v", len(page3.Posts), page3.HasMore)
	}
}

func TestListPageMath(t *testing.T) {
	store := newFakePostStore()
	svc := newPostService(store)
	ctx := context.Background()

	for i := 0; i < 11; i++ {
		_, err := svc.Create(ctx, 1, &dto.CreatePostRequest{
			Title:    "Post " + string(rune('A'+i)),
			Sections: []dto.SectionInput{{Content: "body"}},
		})
		if err != nil {
			t.Fatalf("Create %d: %v", i, err)
		}
	}

	page, err := svc.ListPage(ctx, 1, 5, 0)
	if err != nil {
		t.Fatalf("ListPage: %v", err)
	}
	if page.TotalCount != 11 || page.TotalPages != 3 {
		t.Errorf("totalCount=%d totalPages=%d, want 11/3", page.TotalCount, page.TotalPages)
	}
	if !page.HasNextPage {
		t.Error("page 1 of 3 should have a next page")
	}

	last, err := svc.ListPage(ctx, 3, 5, 0)
	if err != nil {
		t.Fatalf("ListPage last: %v", err)
	}
	if len(last.Posts) != 1 || last.HasNextPage {
		t.Errorf("last page: %d posts, hasNextPage=%v", len(last.Posts), last.HasNextPage)
	}
}
