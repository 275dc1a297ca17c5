// Package scan 将扫码设备输出的原始字串转成病历号。
// 院内腕带条码尾端 8 码是病历号，首位为 0 时实际病历号只有 7 码。
package scan

// Normalize 扫码结果转病历号：
// 长度不足 8 原样返回；否则取末 8 码，若首字元是 '0' 再去掉它取末 7 码。
func Normalize(raw string) string {
	if len(raw) < 8 {
		return raw
	}
	last8 := raw[len(raw)-8:]
	if last8[0] == '0' {
		return last8[1:]
	}
	return last8
}
