package category

// CategoryItem is a product category with the number of active products in it.
type CategoryItem struct {
	Name         string `json:"name" gorm:"column:name"`
	ProductCount int64  `json:"productCount" gorm:"column:product_count"`
}
