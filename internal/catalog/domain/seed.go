package domain

// SeedProducts returns the built-in catalog.
func SeedProducts() []Product {
	return []Product{
		{
			ID:          "p1",
			Slug:        "kaos-basic-hitam",
			Name:        "Kaos Basic Hitam",
			Price:       99000,
			ImageURL:    "https://via.placeholder.com/400x400?text=Kaos+Hitam",
			Description: "Kaos basic bahan katun combed, nyaman dipakai sehari-hari.",
			Tags:        []string{"fashion", "t-shirt"},
			Stock:       IntPtr(12),
		},
		{
			ID:          "p2",
			Slug:        "hoodie-abu",
			Name:        "Hoodie Abu",
			Price:       199000,
			ImageURL:    "https://via.placeholder.com/400x400?text=Hoodie+Abu",
			Description: "Hoodie abu-abu nyaman untuk cuaca dingin maupun santai.",
			Tags:        []string{"fashion", "hoodie"},
			Stock:       IntPtr(5),
		},
		{
			ID:          "p3",
			Slug:        "topi-hitam",
			Name:        "Topi-Hitam",
			Price:       59000,
			ImageURL:    "https://via.placeholder.com/400x400?text=Topi+Hitam",
			Description: "Topi hitam simple, cocok untuk harian.",
			Tags:        []string{"fashion", "hat"},
			Stock:       IntPtr(20),
		},
		{
			ID:          "p4",
			Slug:        "sneakers-putih",
			Name:        "Sneakers Putih",
			Price:       349000,
			ImageURL:    "https://via.placeholder.com/400x400?text=Sneakers+Putih",
			Description: "Sepatu sneakers putih kasual untuk aktivitas sehari-hari.",
			Tags:        []string{"fashion", "shoes"},
			Stock:       IntPtr(8),
		},
		{
			ID:          "p5",
			Slug:        "kemeja-kotak-biru",
			Name:        "Kemeja Kotak Biru",
			Price:       159000,
			ImageURL:    "https://via.placeholder.com/400x400?text=Kemeja+Biru",
			Description: "Kemeja kotak-kotak biru dengan bahan nyaman dan adem.",
			Tags:        []string{"fashion", "shirt"},
			Stock:       IntPtr(15),
		},
		{
			ID:          "p6",
			Slug:        "celana-jeans-slimfit",
			Name:        "Celana Jeans Slim Fit",
			Price:       229000,
			ImageURL:    "https://via.placeholder.com/400x400?text=Jeans+Slimfit",
			Description: "Celana jeans slim fit warna biru tua untuk tampilan rapi.",
			Tags:        []string{"fashion", "pants"},
			Stock:       IntPtr(10),
		},
		{
			ID:          "p7",
			Slug:        "jaket-parka-olive",
			Name:        "Jaket Parka Olive",
			Price:       279000,
			ImageURL:    "https://via.placeholder.com/400x400?text=Parka+Olive",
			Description: "Jaket parka warna olive dengan hoodie, cocok untuk outdoor.",
			Tags:        []string{"fashion", "jacket"},
			Stock:       IntPtr(7),
		},
		{
			ID:          "p8",
			Slug:        "tas-ransel-hitam",
			Name:        "Tas Ransel Hitam",
			Price:       189000,
			ImageURL:    "https://via.placeholder.com/400x400?text=Tas+Ransel",
			Description: "Tas ransel hitam dengan banyak kompartemen, cocok untuk sehari-hari.",
			Tags:        []string{"bag", "accessories"},
			Stock:       IntPtr(18),
		},
		{
			ID:          "p9",
			Slug:        "jam-tangan-minimalis",
			Name:        "Jam Tangan Minimalis",
			Price:       249000,
			ImageURL:    "https://via.placeholder.com/400x400?text=Jam+Tangan",
			Description: "Jam tangan dengan desain minimalis dan strap kulit sintetis.",
			Tags:        []string{"watch", "accessories"},
			Stock:       IntPtr(9),
		},
		{
			ID:          "p10",
			Slug:        "dompet-kulit-coklat",
			Name:        "Dompet Kulit Coklat",
			Price:       99000,
			ImageURL:    "https://via.placeholder.com/400x400?text=Dompet",
			Description: "Dompet kulit warna coklat dengan banyak slot kartu.",
			Tags:        []string{"wallet", "accessories"},
			Stock:       IntPtr(25),
		},
	}
}
