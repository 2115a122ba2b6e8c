package records

import "context"

// Repository ports (interface untuk persistence). Semua read-only:
// setiap analysis run fetch ulang seluruh koleksi.

type BillRepository interface {
	ListAll(ctx context.Context) ([]BillLine, error)
}

type ProductRepository interface {
	ListAll(ctx context.Context) ([]Product, error)
}

type SupplierRepository interface {
	ListAll(ctx context.Context) ([]SupplierRow, error)
}

type DemandRepository interface {
	ListAll(ctx context.Context) ([]DemandRow, error)
}

// ArtifactStore port (interface untuk penyimpanan report artifact)
type ArtifactStore interface {
	UploadJSON(ctx context.Context, key string, payload any) (string, error)
}
