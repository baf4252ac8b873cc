package memory

import (
	"context"
	"sort"

	"slice/internal/core/apperror"
	"slice/internal/core/id"
	"slice/internal/core/types"
	"slice/internal/domain/catalog"
	"slice/internal/domain/recipe"
)

// BranchRepo implements catalog.BranchRepository.
type BranchRepo struct{ s *Store }

var _ catalog.BranchRepository = (*BranchRepo)(nil)

func (r *BranchRepo) Create(ctx context.Context, b *catalog.Branch) error {
	return r.s.write(ctx, func(st *state) error {
		st.branches[b.ID] = *b
		return nil
	})
}

func (r *BranchRepo) GetByID(ctx context.Context, branchID id.ID) (*catalog.Branch, error) {
	var out catalog.Branch
	err := r.s.read(func(st *state) error {
		b, ok := st.branches[branchID]
		if !ok {
			return apperror.NewNotFound("branch", branchID.String())
		}
		out = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *BranchRepo) List(ctx context.Context) ([]catalog.Branch, error) {
	var out []catalog.Branch
	r.s.view(func(st *state) {
		for _, b := range st.branches {
			out = append(out, b)
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ItemRepo implements catalog.ItemRepository.
type ItemRepo struct{ s *Store }

var _ catalog.ItemRepository = (*ItemRepo)(nil)

func (r *ItemRepo) Create(ctx context.Context, item *catalog.Item) error {
	return r.s.write(ctx, func(st *state) error {
		st.items[item.ID] = *item
		return nil
	})
}

func (r *ItemRepo) Update(ctx context.Context, item *catalog.Item) error {
	return r.s.write(ctx, func(st *state) error {
		old, ok := st.items[item.ID]
		if !ok {
			return apperror.NewNotFound("item", item.ID.String())
		}
		item.CreatedAt = old.CreatedAt
		st.items[item.ID] = *item
		return nil
	})
}

func (r *ItemRepo) GetByID(ctx context.Context, itemID id.ID) (*catalog.Item, error) {
	var out catalog.Item
	err := r.s.read(func(st *state) error {
		item, ok := st.items[itemID]
		if !ok {
			return apperror.NewNotFound("item", itemID.String())
		}
		out = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *ItemRepo) GetByIDs(ctx context.Context, itemIDs []id.ID) (map[id.ID]catalog.Item, error) {
	out := make(map[id.ID]catalog.Item, len(itemIDs))
	r.s.view(func(st *state) {
		for _, itemID := range itemIDs {
			if item, ok := st.items[itemID]; ok {
				out[itemID] = item
			}
		}
	})
	return out, nil
}

func (r *ItemRepo) List(ctx context.Context, category string) ([]catalog.Item, error) {
	var out []catalog.Item
	r.s.view(func(st *state) {
		for _, item := range st.items {
			if category != "" && item.Category != category {
				continue
			}
			out = append(out, item)
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ProductRepo implements catalog.ProductRepository.
type ProductRepo struct{ s *Store }

var _ catalog.ProductRepository = (*ProductRepo)(nil)

func (r *ProductRepo) Create(ctx context.Context, p *catalog.Product) error {
	return r.s.write(ctx, func(st *state) error {
		st.products[p.ID] = *p
		return nil
	})
}

func (r *ProductRepo) GetByID(ctx context.Context, productID id.ID) (*catalog.Product, error) {
	var out catalog.Product
	err := r.s.read(func(st *state) error {
		p, ok := st.products[productID]
		if !ok {
			return apperror.NewNotFound("product", productID.String())
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *ProductRepo) List(ctx context.Context, onlyAvailable bool) ([]catalog.Product, error) {
	var out []catalog.Product
	r.s.view(func(st *state) {
		for _, p := range st.products {
			if onlyAvailable && !p.IsAvailable {
				continue
			}
			out = append(out, p)
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *ProductRepo) UpdatePrice(ctx context.Context, productID id.ID, price types.Money) error {
	return r.s.write(ctx, func(st *state) error {
		p, ok := st.products[productID]
		if !ok {
			return apperror.NewNotFound("product", productID.String())
		}
		p.BasePrice = price
		st.products[productID] = p
		return nil
	})
}

func (r *ProductRepo) SetAvailability(ctx context.Context, productID id.ID, available bool) error {
	return r.s.write(ctx, func(st *state) error {
		p, ok := st.products[productID]
		if !ok {
			return apperror.NewNotFound("product", productID.String())
		}
		p.IsAvailable = available
		st.products[productID] = p
		return nil
	})
}

// RecipeRepo implements recipe.Repository.
type RecipeRepo struct{ s *Store }

var _ recipe.Repository = (*RecipeRepo)(nil)

func (r *RecipeRepo) LinesForProduct(ctx context.Context, productID id.ID) ([]recipe.Line, error) {
	var out []recipe.Line
	r.s.view(func(st *state) {
		for _, l := range st.recipes[productID] {
			if item, ok := st.items[l.ItemID]; ok {
				l.ItemName = item.Name
				l.BaseUnit = item.BaseUnit
			}
			out = append(out, l)
		}
	})
	return out, nil
}

func (r *RecipeRepo) ReplaceLines(ctx context.Context, productID id.ID, lines []recipe.Line) error {
	return r.s.write(ctx, func(st *state) error {
		if len(lines) == 0 {
			delete(st.recipes, productID)
			return nil
		}
		cp := make([]recipe.Line, len(lines))
		copy(cp, lines)
		st.recipes[productID] = cp
		return nil
	})
}
