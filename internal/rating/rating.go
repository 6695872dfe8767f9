package rating

import "math"

// Round округляет рейтинг до одного знака после запятой (половина вверх).
// Та же функция применяется при сохранении отзыва и при пересчёте
// агрегата, чтобы хранимое и вычисляемое значения не расходились.
func Round(x float64) float64 {
	return math.Round(x*10) / 10
}

// Average возвращает средний рейтинг набора, округлённый до одного знака,
// или 0.0 для пустого набора.
func Average(ratings []float64) float64 {
	if len(ratings) == 0 {
		return 0.0
	}
	var sum float64
	for _, r := range ratings {
		sum += r
	}
	return Round(sum / float64(len(ratings)))
}

// Distribution раскладывает рейтинги по корзинам 1..5, округляя каждый до
// ближайшего целого. Все пять корзин присутствуют в ответе, даже пустые.
func Distribution(ratings []float64) map[int]int {
	dist := map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}
	for _, r := range ratings {
		bucket := int(math.Round(r))
		if _, ok := dist[bucket]; ok {
			dist[bucket]++
		}
	}
	return dist
}
