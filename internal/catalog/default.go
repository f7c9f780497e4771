package catalog

import (
	"fmt"
	"path"
)

var (
	icoNames   = []string{"brave.ico", "app_list.ico", "app_list_sxs.ico", "incognito.ico"}
	icoMembers = []int{16, 24, 32, 48, 256}

	icnsAppMembers = []int{16, 32, 64, 128, 256, 512}

	androidDensities = []struct {
		name  string
		scale float64
	}{
		{"mdpi", 1}, {"hdpi", 1.5}, {"xhdpi", 2}, {"xxhdpi", 3}, {"xxxhdpi", 4},
	}
)

// Default returns the theme layout a browser build consumes.
func Default() Catalog {
	var rs []Recipe

	rs = append(rs, sized(PlatformLinux, "brave/linux", 16, 24, 32, 48, 64, 128, 256)...)
	rs = append(rs, icns(PlatformMac, "brave/mac"))
	rs = append(rs, Recipe{
		ID: "brave/win/icons", Platform: PlatformWin, Kind: KindICO, Path: "brave/win",
		Width: 256, Height: 256, Names: icoNames, Members: icoMembers,
	})
	rs = append(rs,
		Recipe{ID: "brave/win/tiles/Logo.png", Platform: PlatformWin, Kind: KindPNG, Path: "brave/win/tiles/Logo.png", Width: 600, Height: 188, Fit: true},
		Recipe{ID: "brave/win/tiles/SmallLogo.png", Platform: PlatformWin, Kind: KindPNG, Path: "brave/win/tiles/SmallLogo.png", Width: 176, Height: 24, Fit: true},
	)
	rs = append(rs,
		drawable("brave/android/mipmap", "brave/android", "mipmap", "app_icon.png"),
		drawable("brave/android/drawable", "brave/android/res_brave", "drawable", "fre_product_logo.png"),
	)
	rs = append(rs, sized(PlatformCommon, "brave", 16, 22, 24, 48, 64, 128, 256)...)
	rs = append(rs, mono("brave"))

	rs = append(rs, sized(PlatformLinux, "chromium/linux", 24, 32, 48, 64, 128, 256)...)
	rs = append(rs, icns(PlatformMac, "chromium/mac"))
	rs = append(rs, sized(PlatformCommon, "chromium", 16, 24, 48, 64, 128, 256)...)
	rs = append(rs, mono("chromium"))

	rs = append(rs, sized(PlatformLinux, "default_100_percent/brave/linux", 16, 32)...)
	rs = append(rs, sized(PlatformCommon, "default_100_percent/brave", 16, 32)...)
	rs = append(rs, named(PlatformCommon, "default_100_percent/brave", 22)...)
	rs = append(rs, sized(PlatformCommon, "default_200_percent/brave", 32, 64)...)
	rs = append(rs, named(PlatformCommon, "default_200_percent/brave", 44)...)

	return Catalog{Recipes: rs}
}

func sized(platform, dir string, sizes ...int) []Recipe {
	out := make([]Recipe, 0, len(sizes))
	for _, size := range sizes {
		p := path.Join(dir, fmt.Sprintf("product_logo_%d.png", size))
		out = append(out, Recipe{ID: p, Platform: platform, Kind: KindPNG, Path: p, Width: size, Height: size})
	}
	return out
}

func named(platform, dir string, size int) []Recipe {
	var out []Recipe
	for _, name := range []string{"product_logo_name_22.png", "product_logo_name_22_white.png"} {
		p := path.Join(dir, name)
		out = append(out, Recipe{ID: p, Platform: platform, Kind: KindPNG, Path: p, Width: size, Height: size})
	}
	return out
}

func mono(dir string) Recipe {
	p := path.Join(dir, "product_logo_22_mono.png")
	return Recipe{ID: p, Platform: PlatformCommon, Kind: KindMono, Path: p, Width: 22, Height: 22}
}

func icns(platform, dir string) Recipe {
	return Recipe{
		ID: path.Join(dir, "icns"), Platform: platform, Kind: KindICNS, Path: dir,
		Width: 512, Height: 512, Names: []string{"app.icns"}, Members: icnsAppMembers,
	}
}

func drawable(id, dir, prefix, file string) Recipe {
	buckets := make([]Bucket, 0, len(androidDensities))
	for _, d := range androidDensities {
		buckets = append(buckets, Bucket{Name: prefix + "-" + d.name, Scale: d.scale})
	}
	return Recipe{
		ID: id, Platform: PlatformAndroid, Kind: KindDrawable, Path: dir,
		Width: 48, Height: 48, File: file, Buckets: buckets,
	}
}
