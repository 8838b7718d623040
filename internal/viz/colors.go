package viz

import "fmt"

// emissionColor — верхняя граница диапазона эмиссии и цвет слоя.
// Цвета подобраны по спектрам распространённых флуоресцентных белков
// (mTFP1, EGFP, SYFP2, mBanana, mOrange, tdTomato, mCherry,
// mRaspberry, mPlum).
type emissionColor struct {
	upperNm int
	hex     int
}

// Границы включительные; порядок по возрастанию обязателен.
var emissionColors = []emissionColor{
	{500, 0x61ABFD}, // ruddy blue
	{530, 0x92FF42}, // chartreuse
	{540, 0xE4FE41}, // chartreuse
	{560, 0xF3D038}, // mustard
	{580, 0xEAB032}, // xanthous
	{600, 0xF15F22}, // giants orange
	{630, 0xED1C24}, // red
	{680, 0xC51E1F}, // fire engine red
	{700, 0xA81F1F}, // fire brick
}

// ColorForEmission возвращает hex-цвет слоя для длины волны эмиссии.
// Длины волн выше последней границы получают цвет последнего диапазона.
func ColorForEmission(wavelengthNm int) string {
	hex := emissionColors[len(emissionColors)-1].hex
	for _, c := range emissionColors {
		if wavelengthNm <= c.upperNm {
			hex = c.hex
			break
		}
	}
	return fmt.Sprintf("#%06x", hex)
}
