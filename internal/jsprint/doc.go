// Package jsprint prints jsast trees as JavaScript source.
//
// Назначение: детерминированный вывод сгенерированного кода (одинаковое дерево
// даёт байт-в-байт одинаковый текст).
// Не делает: минификацию, source maps, разбор JS.
// Зависимости: internal/jsast.
package jsprint
