package vec

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Vec3 представляет трехмерный вектор с целочисленными координатами.
// Y - высота. Структура сравнима и используется как ключ map напрямую.
type Vec3 struct {
	X int
	Y int
	Z int
}

// Vec3Float представляет трехмерный вектор с плавающими координатами
type Vec3Float struct {
	X float64
	Y float64
	Z float64
}

// KeySize - длина бинарного ключа координаты.
const KeySize = 12

// VolumetricOffsets - 26 соседей куба 3x3x3 без центра.
// Порядок перебора фиксирован: dx, затем dy, затем dz от -1 до 1.
var VolumetricOffsets = buildVolumetricOffsets()

// PlanarOffsets - 8 соседей на той же высоте, порядок dx, затем dz.
var PlanarOffsets = buildPlanarOffsets()

func buildVolumetricOffsets() []Vec3 {
	offsets := make([]Vec3, 0, 26)
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			for dz := -1; dz <= 1; dz++ {
				if dx == 0 && dy == 0 && dz == 0 {
					continue
				}
				offsets = append(offsets, Vec3{X: dx, Y: dy, Z: dz})
			}
		}
	}
	return offsets
}

func buildPlanarOffsets() []Vec3 {
	offsets := make([]Vec3, 0, 8)
	for dx := -1; dx <= 1; dx++ {
		for dz := -1; dz <= 1; dz++ {
			if dx == 0 && dz == 0 {
				continue
			}
			offsets = append(offsets, Vec3{X: dx, Z: dz})
		}
	}
	return offsets
}

// ToVec2 проецирует координату на горизонтальную плоскость (X, Z)
func (v Vec3) ToVec2() Vec2 {
	return Vec2{
		X: v.X,
		Y: v.Z,
	}
}

// ToChunkCoords возвращает координаты колонны чанка, содержащей точку
func (v Vec3) ToChunkCoords() Vec2 {
	return v.ToVec2().ToChunkCoords()
}

// Below возвращает координату на один блок ниже
func (v Vec3) Below() Vec3 {
	return Vec3{X: v.X, Y: v.Y - 1, Z: v.Z}
}

// Above возвращает координату на один блок выше
func (v Vec3) Above() Vec3 {
	return Vec3{X: v.X, Y: v.Y + 1, Z: v.Z}
}

// DistanceSq возвращает квадрат расстояния до другого вектора
func (v Vec3) DistanceSq(other Vec3) int {
	dx := v.X - other.X
	dy := v.Y - other.Y
	dz := v.Z - other.Z
	return dx*dx + dy*dy + dz*dz
}

// Equals проверяет равенство векторов
func (v Vec3) Equals(other Vec3) bool {
	return v.X == other.X && v.Y == other.Y && v.Z == other.Z
}

// Add складывает два вектора
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{
		X: v.X + other.X,
		Y: v.Y + other.Y,
		Z: v.Z + other.Z,
	}
}

// String форматирует координату как "x,y,z"
func (v Vec3) String() string {
	return fmt.Sprintf("%d,%d,%d", v.X, v.Y, v.Z)
}

// Key кодирует координату в 12 байт big-endian со сдвигом знака,
// так что лексикографический порядок ключей совпадает с порядком (X, Y, Z).
func (v Vec3) Key() []byte {
	buf := make([]byte, KeySize)
	binary.BigEndian.PutUint32(buf[0:4], uint32(int32(v.X))^0x80000000)
	binary.BigEndian.PutUint32(buf[4:8], uint32(int32(v.Y))^0x80000000)
	binary.BigEndian.PutUint32(buf[8:12], uint32(int32(v.Z))^0x80000000)
	return buf
}

// Vec3FromKey восстанавливает координату из ключа Key
func Vec3FromKey(key []byte) (Vec3, error) {
	if len(key) != KeySize {
		return Vec3{}, fmt.Errorf("invalid coordinate key length %d", len(key))
	}
	return Vec3{
		X: int(int32(binary.BigEndian.Uint32(key[0:4]) ^ 0x80000000)),
		Y: int(int32(binary.BigEndian.Uint32(key[4:8]) ^ 0x80000000)),
		Z: int(int32(binary.BigEndian.Uint32(key[8:12]) ^ 0x80000000)),
	}, nil
}

// ToVec3Float переводит целочисленную координату в вещественную
func (v Vec3) ToVec3Float() Vec3Float {
	return Vec3Float{X: float64(v.X), Y: float64(v.Y), Z: float64(v.Z)}
}

// DistanceTo возвращает евклидово расстояние до другой точки
func (v Vec3Float) DistanceTo(other Vec3Float) float64 {
	dx := v.X - other.X
	dy := v.Y - other.Y
	dz := v.Z - other.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Floor возвращает блок, в котором находится точка
func (v Vec3Float) Floor() Vec3 {
	return Vec3{X: int(math.Floor(v.X)), Y: int(math.Floor(v.Y)), Z: int(math.Floor(v.Z))}
}
