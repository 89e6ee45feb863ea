// Package station loads and indexes the 12306 station dataset.
//
// The dataset (station_name.js) is parsed once into an immutable in-memory
// Index supporting exact telecode resolution and tiered fuzzy search over
// names and pinyin. A Provider swaps indexes atomically so that an
// out-of-band refresh never exposes a half-built catalog to readers.
package station
